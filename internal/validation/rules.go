package validation

import "portfolio-tracker/internal/domain"

// Input is a decoded JSON request body. Numbers are json.Number.
type Input map[string]any

type check struct {
	ok      func(any) bool
	message string
}

// FieldRule is the chain of checks for one field. Checks run in order and the
// first failure is reported; other fields are unaffected.
type FieldRule struct {
	field    string
	optional bool
	checks   []check
}

// Field starts a rule for the named body field.
func Field(name string) *FieldRule {
	return &FieldRule{field: name}
}

// Optional skips every check when the field is absent or null.
func (r *FieldRule) Optional() *FieldRule {
	r.optional = true
	return r
}

func (r *FieldRule) Check(ok func(any) bool, message string) *FieldRule {
	r.checks = append(r.checks, check{ok: ok, message: message})
	return r
}

func (r *FieldRule) NotEmpty(message string) *FieldRule {
	return r.Check(NotEmpty, message)
}

func (r *FieldRule) MaxLength(max int, message string) *FieldRule {
	return r.Check(func(v any) bool { return length(v) <= max }, message)
}

func (r *FieldRule) MinLength(min int, message string) *FieldRule {
	return r.Check(func(v any) bool { return length(v) >= min }, message)
}

func (r *FieldRule) Numeric(message string) *FieldRule {
	return r.Check(IsNumeric, message)
}

func (r *FieldRule) Int(message string) *FieldRule {
	return r.Check(IsInt, message)
}

func (r *FieldRule) ISO8601(message string) *FieldRule {
	return r.Check(IsISO8601, message)
}

func (r *FieldRule) StringType(message string) *FieldRule {
	return r.Check(IsString, message)
}

func (r *FieldRule) Email(message string) *FieldRule {
	return r.Check(IsEmail, message)
}

// Name returns the body field the rule applies to.
func (r *FieldRule) Name() string { return r.field }

func (r *FieldRule) validate(in Input) (domain.Violation, bool) {
	v, present := in[r.field]
	if r.optional && (!present || v == nil) {
		return domain.Violation{}, true
	}
	for _, c := range r.checks {
		if !c.ok(v) {
			return domain.Violation{Field: r.field, Message: c.message, Value: v}, false
		}
	}
	return domain.Violation{}, true
}

// Ruleset maps fields to their rules. Every field is checked independently.
type Ruleset []*FieldRule

// Validate returns one violation per invalid field, in ruleset order.
func (rs Ruleset) Validate(in Input) []domain.Violation {
	var violations []domain.Violation
	for _, rule := range rs {
		if v, ok := rule.validate(in); !ok {
			violations = append(violations, v)
		}
	}
	return violations
}

// Check wraps Validate into a classified error, or nil when the input is acceptable.
func (rs Ruleset) Check(in Input) error {
	if violations := rs.Validate(in); len(violations) > 0 {
		return domain.ValidationError(violations)
	}
	return nil
}

var TransactionRules = Ruleset{
	Field("stockName").
		NotEmpty("Stock name must not be empty.").
		MaxLength(20, "Max length of stock name is 20 chars."),
	Field("stockSector").Optional().
		MaxLength(20, "Max length of stock sector is 20 chars."),
	Field("transactionTime").
		NotEmpty("Transaction time must not be empty.").
		ISO8601("Transaction time is not a valid date format."),
	Field("transactionType").
		Check(IsTransactionTypeValid, "Invalid transaction type."),
	Field("numShares").
		Numeric("Number of shares must be numeric."),
	Field("price").
		Numeric("Price must be numeric."),
	Field("currency").
		NotEmpty("Stock currency must not be empty.").
		MaxLength(4, "Max length of currency is 4 chars."),
	Field("execution").
		Check(IsExecutionTypeValid, "Invalid execution type."),
	Field("commissions").Optional().
		Numeric("Commissions must be numeric."),
	Field("notes").Optional().
		StringType("Notes must be a string."),
	Field("portfolioId").
		NotEmpty("Portfolio id must not be empty.").
		Int("Portfolio id must be an integer."),
}

var UserUpdateRules = Ruleset{
	Field("firstName").
		NotEmpty("First name must not be empty.").
		MaxLength(40, "Max length of first name is 40 chars."),
	Field("lastName").
		NotEmpty("Last name must not be empty.").
		MaxLength(40, "Max length of last name is 40 chars."),
	Field("role").Optional().
		StringType("Role must be a string.").
		MaxLength(20, "Max length of role is 20 chars."),
	Field("portfolioManagerId").Optional().
		Int("Portfolio manager id must be an integer."),
}

var EmailRules = Ruleset{
	Field("email").
		NotEmpty("Email must not be empty.").
		Email("Please enter a valid email."),
}

var RegisterRules = Ruleset{
	Field("email").
		NotEmpty("Email must not be empty.").
		Email("Please enter a valid email.").
		MaxLength(40, "Max length of email is 40 chars."),
	Field("password").
		NotEmpty("Password must not be empty.").
		MinLength(8, "Password must be at least 8 chars."),
	Field("firstName").
		NotEmpty("First name must not be empty.").
		MaxLength(40, "Max length of first name is 40 chars."),
	Field("lastName").
		NotEmpty("Last name must not be empty.").
		MaxLength(40, "Max length of last name is 40 chars."),
}

var LoginRules = Ruleset{
	Field("email").NotEmpty("Email must not be empty."),
	Field("password").NotEmpty("Password must not be empty."),
}

var PortfolioRules = Ruleset{
	Field("name").
		NotEmpty("Portfolio name must not be empty.").
		MaxLength(40, "Max length of portfolio name is 40 chars."),
}

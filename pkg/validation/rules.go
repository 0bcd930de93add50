package validation

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"pharmacy-site/pkg/models"
	"pharmacy-site/pkg/utils"
)

// DateLayout is the calendar date format posted by date inputs.
const DateLayout = "2006-01-02"

var (
	phonePattern = regexp.MustCompile(`^(?:\+?1[-. ]?)?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(?:-\d{4})?$`)
	ncpdpPattern = regexp.MustCompile(`^\d{7}$`)
	statePattern = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so error keys match the form inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	rules := map[string]validator.Func{
		"notblank":  notBlank,
		"usphone":   matches(phonePattern),
		"emailish":  matches(emailPattern),
		"zip":       matches(zipPattern),
		"ncpdp":     matches(ncpdpPattern),
		"statecode": matches(statePattern),
		"rxlist":    rxList,
		"rxnumber":  rxNumber,
		"caldate":   calendarDate,

		"optusphone":  optional(matches(phonePattern)),
		"optemailish": optional(matches(emailPattern)),
		"optncpdp":    optional(matches(ncpdpPattern)),
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}

	v.RegisterStructValidation(contactRules, models.ContactRequest{})
	return v
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(strings.TrimSpace(fl.Field().String()))
	}
}

// optional accepts a blank value. omitempty alone lets whitespace through
// to the wrapped rule.
func optional(fn validator.Func) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) == "" || fn(fl)
	}
}

func rxList(fl validator.FieldLevel) bool {
	_, ok := utils.ParseRxNumbers(fl.Field().String())
	return ok
}

func rxNumber(fl validator.FieldLevel) bool {
	n, err := strconv.ParseInt(strings.TrimSpace(fl.Field().String()), 10, 64)
	return err == nil && n > 0
}

func calendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(fl.Field().String()))
	return err == nil
}

// contactRules makes the message required for reasons that need details.
func contactRules(sl validator.StructLevel) {
	c := sl.Current().Interface().(models.ContactRequest)
	if c.Reason.RequiresMessage() && strings.TrimSpace(c.Message) == "" {
		sl.ReportError(c.Message, models.FieldMessage, "Message", "requiredforreason", "")
	}
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight in loc. Parsing in
// UTC would shift the day for users west of Greenwich.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

// Today returns midnight of now's calendar day in now's location.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegister(t *testing.T) {
	errs := ValidateRegister("awa@example.ga", "Awa Nze", nil, "Secret123")
	assert.False(t, errs.HasErrors())

	errs = ValidateRegister("", "", nil, "")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "display_name")
	assert.Contains(t, errs, "password")

	errs = ValidateRegister("not-an-email", "Awa", nil, "Secret123")
	assert.Contains(t, errs, "email")

	errs = ValidateRegister("awa@example.ga", "A", nil, "Secret123")
	assert.Contains(t, errs, "display_name")

	long := strings.Repeat("a", 101)
	errs = ValidateRegister("awa@example.ga", long, nil, "Secret123")
	assert.Contains(t, errs, "display_name")
}

func TestValidateRegisterPhone(t *testing.T) {
	valid := []string{"+241 06 12 34 56", "24106123456", "+24106123456", "241-06-12-34-56"}
	for _, p := range valid {
		phone := p
		errs := ValidateRegister("awa@example.ga", "Awa", &phone, "Secret123")
		assert.NotContains(t, errs, "phone", "expected %q to be accepted", p)
	}

	invalid := []string{"+33 6 12 34 56 78", "0612345678", "241"}
	for _, p := range invalid {
		phone := p
		errs := ValidateRegister("awa@example.ga", "Awa", &phone, "Secret123")
		assert.Contains(t, errs, "phone", "expected %q to be rejected", p)
	}

	// empty phone is fine, the field is optional
	empty := ""
	errs := ValidateRegister("awa@example.ga", "Awa", &empty, "Secret123")
	assert.NotContains(t, errs, "phone")
}

func TestValidatePasswordRules(t *testing.T) {
	cases := map[string]bool{
		"Secret123": true,
		"short1A":   false,
		"alllowercase1": false,
		"ALLUPPERCASE1": false,
		"NoDigitsHere":  false,
	}
	for pw, ok := range cases {
		errs := ValidateRegister("awa@example.ga", "Awa", nil, pw)
		if ok {
			assert.NotContains(t, errs, "password", "password %q should pass", pw)
		} else {
			assert.Contains(t, errs, "password", "password %q should fail", pw)
		}
	}
}

func TestValidateLogin(t *testing.T) {
	errs := ValidateLogin("awa@example.ga", "whatever")
	assert.False(t, errs.HasErrors())

	errs = ValidateLogin("", "")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestValidateBusiness(t *testing.T) {
	errs := ValidateBusiness("Chez Mireille", "restaurant", "Libreville")
	assert.False(t, errs.HasErrors())

	errs = ValidateBusiness("", "", "")
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "category")
	assert.Contains(t, errs, "city")

	errs = ValidateBusiness("C", "restaurant", "Libreville")
	assert.Contains(t, errs, "name")
}

func TestValidateMessage(t *testing.T) {
	errs := ValidateMessage("bonjour", "text")
	assert.False(t, errs.HasErrors())

	// type defaults to text server-side; empty content still invalid
	errs = ValidateMessage("   ", "")
	assert.Contains(t, errs, "content")

	errs = ValidateMessage("", "image")
	assert.False(t, errs.HasErrors())

	errs = ValidateMessage("x", "telepathy")
	assert.Contains(t, errs, "type")

	errs = ValidateMessage(strings.Repeat("x", 4001), "text")
	assert.Contains(t, errs, "content")
}

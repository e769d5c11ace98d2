package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTemplateAcceptsKnownPlaceholders(t *testing.T) {
	err := ValidateTemplate("cash: {{cash}}, positions: {{positions}}")
	assert.NoError(t, err)
}

func TestValidateTemplateRejectsUnknownPlaceholder(t *testing.T) {
	err := ValidateTemplate("{{not_a_real_field}}")
	assert.Error(t, err)
}

func TestValidateTemplateRejectsUnbalancedBraces(t *testing.T) {
	err := ValidateTemplate("cash: {{cash}")
	assert.Error(t, err)
}

func TestRenderLenientFillsMissingAsEmpty(t *testing.T) {
	out, err := Render("cash={{cash}} mv={{market_value}}", map[string]string{"cash": "100.00"}, false)
	assert.NoError(t, err)
	assert.Equal(t, "cash=100.00 mv=", out)
}

func TestRenderStrictFailsOnMissingKey(t *testing.T) {
	_, err := Render("cash={{cash}}", map[string]string{}, true)
	assert.Error(t, err)
}

func TestRenderSubstitutesAllOccurrences(t *testing.T) {
	out, err := Render("{{cash}} and {{cash}}", map[string]string{"cash": "5"}, false)
	assert.NoError(t, err)
	assert.Equal(t, "5 and 5", out)
}

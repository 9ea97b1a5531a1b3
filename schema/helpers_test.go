package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatOptional(t *testing.T) {
	assert.Equal(t, "-", FormatOptionalInt(nil))
	assert.Equal(t, "12", FormatOptionalInt(Ptr(12)))
	assert.Equal(t, "-", FormatOptionalFloat(nil, 2))
	assert.Equal(t, "0.25", FormatOptionalFloat(Ptr(0.25), 2))
	assert.Equal(t, "-", FormatOptionalString(nil))
	assert.Equal(t, "python", FormatOptionalString(Ptr("python")))
}

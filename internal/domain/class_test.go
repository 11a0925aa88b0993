package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMMI(t *testing.T) {
	tests := []struct {
		name     string
		mmi      float64
		expected MMIClass
	}{
		{"zero", 0, MMIClassWeak},
		{"weak", 2.7, MMIClassWeak},
		{"just below light", 3.999, MMIClassWeak},
		{"light lower bound", 4.0, MMIClassLight},
		{"light", 4.5, MMIClassLight},
		{"just below moderate", 4.999, MMIClassLight},
		{"moderate lower bound", 5.0, MMIClassModerate},
		{"strong", 7.8, MMIClassModerate},
		{"negative", -1, MMIClassWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyMMI(tt.mmi))
		})
	}
}

func TestMMIClass_String(t *testing.T) {
	assert.Equal(t, "weak", MMIClassWeak.String())
	assert.Equal(t, "light", MMIClassLight.String())
	assert.Equal(t, "moderate", MMIClassModerate.String())
	assert.Equal(t, "MMIClass(7)", MMIClass(7).String())
}

func TestMMIClass_Valid(t *testing.T) {
	for c := MMIClass(0); c < NumMMIClasses; c++ {
		assert.True(t, c.Valid(), c.String())
	}
	assert.False(t, MMIClass(-1).Valid())
	assert.False(t, MMIClass(NumMMIClasses).Valid())
}

package domain

import "fmt"

// MMIClass is the discretized intensity label predicted by the classifier.
type MMIClass int

const (
	MMIClassWeak     MMIClass = iota // mmi < 4
	MMIClassLight                    // 4 <= mmi < 5
	MMIClassModerate                 // mmi >= 5
)

// NumMMIClasses is the number of intensity classes.
const NumMMIClasses = 3

const (
	lightThreshold    = 4.0
	moderateThreshold = 5.0
)

// ClassifyMMI maps a continuous mmi value to its intensity class. Each band
// includes its lower bound: 4.0 is light and 5.0 is moderate.
// Callers must not pass NaN; cleaned tables never contain it.
func ClassifyMMI(mmi float64) MMIClass {
	switch {
	case mmi < lightThreshold:
		return MMIClassWeak
	case mmi < moderateThreshold:
		return MMIClassLight
	default:
		return MMIClassModerate
	}
}

func (c MMIClass) String() string {
	switch c {
	case MMIClassWeak:
		return "weak"
	case MMIClassLight:
		return "light"
	case MMIClassModerate:
		return "moderate"
	default:
		return fmt.Sprintf("MMIClass(%d)", int(c))
	}
}

// Valid reports whether c is one of the three known classes.
func (c MMIClass) Valid() bool {
	return c >= MMIClassWeak && c <= MMIClassModerate
}

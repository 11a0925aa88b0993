// Package domain models earthquake event tables and the Modified Mercalli
// Intensity (MMI) classes predicted from them.
//
// # Data Source
//
// Event tables follow the USGS ComCat summary export: one row per event with an
// identifier, origin time, place description, "Did You Feel It?" fields and the
// ShakeMap intensity, plus numeric seismic features (magnitude, depth, gap,
// latitude, longitude, ...). Any cell may be missing.
//
// # Column Conventions
//
// Required columns:
//
//	id            event identifier, e.g. "us7000abcd"
//	time          origin time (epoch millis or RFC 3339, never parsed here)
//	place         free-text location, e.g. "12 km SSW of Ridgecrest, CA"
//	felt          number of DYFI felt reports
//	cdi           community decimal intensity from DYFI responses
//	mmi           ShakeMap instrumental intensity (continuous, 1.0 to 10.0)
//	significance  USGS "sig" score, derived partly from felt reports and mmi
//
// felt, cdi and significance are computed from the same shaking observations
// that produce mmi, so they leak the target and are removed before training
// together with the identifier fields. Every other column is a feature and
// must be numeric.
//
// # Intensity Classes
//
// The continuous mmi value is discretized into three classes with lower-inclusive
// bands:
//
//	mmi < 4        weak      (I-III, felt indoors by few)
//	4 <= mmi < 5   light     (IV, felt indoors by many)
//	mmi >= 5       moderate  (V and above, felt by nearly everyone)
//
// See [ClassifyMMI].
package domain

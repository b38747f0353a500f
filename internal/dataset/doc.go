// Package dataset loads the flat files behind the hotspot engine: cleaned
// crime rows, the district location table, the city and crime-category
// catalogs of the prediction model, and an optional severity weights file.
//
// Loading happens once at startup. The returned Dataset is never mutated
// afterwards and is safe to share between goroutines.
package dataset

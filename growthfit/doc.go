// Package growthfit is the calculation core shared by the growth-curve and qPCR analyzers.
//
// It provides:
//
//   - [FindCrossing]: first threshold crossing from below, by linear interpolation
//   - [FitLogLinear]: ordinary least squares of log(y) against x over an index window
//   - [DoublingTime], [AmplificationEfficiency], [StandardCurveEfficiency]: rates derived
//     from a fitted slope
//
// Every function is pure. Absent results are reported with the sentinels in package common:
// ErrorNotFound, ErrorInsufficientData and ErrorDegenerateFit.
package growthfit

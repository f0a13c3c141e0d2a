// Package domain models dengue outbreak risk for Indian cities.
//
// # Features
//
// Every prediction is made from four features:
//
//	Temperature  degrees Celsius
//	Humidity     relative humidity, percent
//	Rainfall     millimetres (monthly estimate, or last hour for live readings)
//	Month        calendar month, 1-12
//
// # Seasonal Profiles
//
// When no live reading is available the features are estimated from a static
// per-city baseline ([CityProfile]) adjusted by season:
//
//	Apr-Jun  pre-monsoon  temp +5, humidity -10
//	Jul-Sep  monsoon      temp -2, humidity +20, rainfall +150
//	Nov-Feb  winter       temp -5, humidity -5,  rainfall -10
//	Mar, Oct shoulder     no adjustment
//
// Estimates are clamped to temperature >= 15, humidity in [30,100] and
// rainfall >= 0. Cities missing from the table use the Delhi baseline.
//
// # Risk Levels
//
// The classifier assigns one of three levels, each with a display color used
// by the dashboard:
//
//	Low       green
//	Moderate  yellow
//	High      red
//
// Anything else renders gray.
package domain

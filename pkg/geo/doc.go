// Package geo provides great-circle distance math and coordinate bounds
// checks used by location-filtered subscriptions and room search.
package geo

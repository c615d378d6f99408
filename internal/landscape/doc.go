// Package landscape holds the landscape data model: the flattened item set
// loaded from the data file, the settings file, and the enrichment steps that
// fold settings and externally collected data into the items.
package landscape

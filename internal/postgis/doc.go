// Package postgis writes shp2pg.Layer values into PostGIS tables.
//
// Every write replaces its target table inside one transaction: the previous
// table is dropped, the new one created with a geometry(<type>, <srid>) column,
// rows are inserted in pgx batches of a configurable size, a GiST index is
// optionally built and the transaction committed. Any failure rolls the whole
// sequence back, leaving the previous table untouched.
package postgis

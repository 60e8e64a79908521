package shapefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePRJ(t *testing.T) {
	tests := []struct {
		name     string
		wkt      string
		wantEPSG int
		wantName string
	}{
		{
			name:     "esri geographic wgs84",
			wkt:      `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`,
			wantEPSG: 4326,
			wantName: "GCS_WGS_1984",
		},
		{
			name:     "root authority wins over nested ones",
			wkt:      `PROJCS["NAD83 / UTM zone 15N",GEOGCS["NAD83",DATUM["North_American_Datum_1983",SPHEROID["GRS 1980",6378137,298.257222101,AUTHORITY["EPSG","7019"]],AUTHORITY["EPSG","6269"]],AUTHORITY["EPSG","4269"]],UNIT["metre",1,AUTHORITY["EPSG","9001"]],AXIS["Easting",EAST],AXIS["Northing",NORTH],AUTHORITY["EPSG","26915"]]`,
			wantEPSG: 26915,
			wantName: "NAD83 / UTM zone 15N",
		},
		{
			name:     "wkt2 id",
			wkt:      `GEOGCRS["WGS 84",DATUM["World Geodetic System 1984",ELLIPSOID["WGS 84",6378137,298.257223563]],CS[ellipsoidal,2],ID["EPSG",4326]]`,
			wantEPSG: 4326,
			wantName: "WGS 84",
		},
		{
			name:     "web mercator",
			wkt:      `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere",GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]]],PROJECTION["Mercator_Auxiliary_Sphere"]]`,
			wantEPSG: 3857,
			wantName: "WGS_1984_Web_Mercator_Auxiliary_Sphere",
		},
		{
			name:     "cgcs2000 geographic",
			wkt:      `GEOGCS["GCS_China_Geodetic_Coordinate_System_2000",DATUM["D_China_2000",SPHEROID["CGCS2000",6378137.0,298.257222101]]]`,
			wantEPSG: 4490,
			wantName: "GCS_China_Geodetic_Coordinate_System_2000",
		},
		{
			name:     "cgcs2000 gauss kruger central meridian",
			wkt:      `PROJCS["CGCS2000_3_Degree_GK_CM_114E",GEOGCS["GCS_China_Geodetic_Coordinate_System_2000"]]`,
			wantEPSG: 4547,
		},
		{
			name:     "utm south",
			wkt:      `PROJCS["WGS_1984_UTM_Zone_33S",GEOGCS["GCS_WGS_1984"]]`,
			wantEPSG: 32733,
		},
		{
			name:     "unknown projected falls through to zero",
			wkt:      `PROJCS["Local_Grid",GEOGCS["GCS_WGS_1984"]]`,
			wantEPSG: 0,
			wantName: "Local_Grid",
		},
		{
			name:     "unknown geographic name resolved from datum",
			wkt:      `GEOGCS["My WGS",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]]]`,
			wantEPSG: 4326,
		},
		{
			name:     "empty",
			wkt:      "  \n",
			wantEPSG: 0,
		},
		{
			name:     "byte order mark",
			wkt:      "\ufeff" + `GEOGCS["GCS_WGS_1984"]`,
			wantEPSG: 4326,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crs, err := ParsePRJ(tt.wkt)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEPSG, crs.EPSG)
			if tt.wantName != "" {
				assert.Equal(t, tt.wantName, crs.Name)
			}
		})
	}
}

func TestParsePRJ_Malformed(t *testing.T) {
	for _, wkt := range []string{
		`PROJCS["broken"`,
		`GEOGCS`,
		`["no keyword"]`,
		`GEOGCS["unterminated]`,
	} {
		_, err := ParsePRJ(wkt)
		assert.Error(t, err, wkt)
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "wgs_84_utm_zone_50n", normalizeName("WGS 84 / UTM zone 50N"))
	assert.Equal(t, "wgs_84_pseudo_mercator", normalizeName("WGS 84 / Pseudo-Mercator"))
	assert.Equal(t, "gcs_wgs_1984", normalizeName(" GCS_WGS_1984 "))
}

func TestLookupName_ZoneBounds(t *testing.T) {
	assert.Equal(t, 32601, lookupName("WGS_1984_UTM_Zone_1N"))
	assert.Equal(t, 32660, lookupName("WGS_1984_UTM_Zone_60N"))
	assert.Equal(t, 0, lookupName("WGS_1984_UTM_Zone_61N"))
	assert.Equal(t, 26918, lookupName("NAD_1983_UTM_Zone_18N"))
	assert.Equal(t, 25832, lookupName("ETRS_1989_UTM_Zone_32N"))
	assert.Equal(t, 4534, lookupName("CGCS2000_3_Degree_GK_CM_75E"))
	assert.Equal(t, 4554, lookupName("CGCS2000_3_Degree_GK_CM_135E"))
	assert.Equal(t, 4513, lookupName("CGCS2000_3_Degree_GK_Zone_25"))
	assert.Equal(t, 0, lookupName(""))
}

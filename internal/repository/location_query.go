package repository

import (
	"strings"

	"github.com/jmoiron/sqlx"
)

// LocationQuery filters the location cache. Zero-valued fields are ignored.
type LocationQuery struct {
	Name        string
	CountryCode string
	// ExcludeCountryCode keeps rows with a different or missing country code
	ExcludeCountryCode  string
	ContinentCode       string
	StateCode           string
	FeatureCodes        []string
	ExcludeFeatureCodes []string
	FeatureCodePrefix   string
	ExcludeGeonamesID   int
	OrderByName         bool
	Limit               int
}

const locationColumns = `id, name, geonames_id, latitude, longitude, country_code, feature_code, continent_code, state_code`

// build renders the query with '?' bind vars; callers rebind for their driver
func (q LocationQuery) build(selectExpr string) (string, []interface{}, error) {
	var (
		where []string
		args  []interface{}
	)

	if q.Name != "" {
		where = append(where, "name = ?")
		args = append(args, q.Name)
	}
	if q.CountryCode != "" {
		where = append(where, "country_code = ?")
		args = append(args, q.CountryCode)
	}
	if q.ExcludeCountryCode != "" {
		where = append(where, "(country_code IS NULL OR country_code <> ?)")
		args = append(args, q.ExcludeCountryCode)
	}
	if q.ContinentCode != "" {
		where = append(where, "continent_code = ?")
		args = append(args, q.ContinentCode)
	}
	if q.StateCode != "" {
		where = append(where, "state_code = ?")
		args = append(args, q.StateCode)
	}
	if len(q.FeatureCodes) > 0 {
		where = append(where, "feature_code IN (?)")
		args = append(args, q.FeatureCodes)
	}
	if len(q.ExcludeFeatureCodes) > 0 {
		where = append(where, "feature_code NOT IN (?)")
		args = append(args, q.ExcludeFeatureCodes)
	}
	if q.FeatureCodePrefix != "" {
		where = append(where, "feature_code LIKE ?")
		args = append(args, stripLikeWildcards(q.FeatureCodePrefix)+"%")
	}
	if q.ExcludeGeonamesID != 0 {
		where = append(where, "geonames_id <> ?")
		args = append(args, q.ExcludeGeonamesID)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectExpr)
	sb.WriteString(" FROM locations")
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	if q.OrderByName {
		sb.WriteString(" ORDER BY name, geonames_id")
	} else if selectExpr == locationColumns {
		sb.WriteString(" ORDER BY id")
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	// expand the IN (?) slices
	query, args, err := sqlx.In(sb.String(), args...)
	if err != nil {
		return "", nil, err
	}
	return query, args, nil
}

func stripLikeWildcards(s string) string {
	r := strings.NewReplacer(`%`, ``, `_`, ``)
	return r.Replace(s)
}

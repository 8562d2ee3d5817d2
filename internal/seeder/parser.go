package seeder

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexivanou/ddigeo/internal/config"
	"github.com/alexivanou/ddigeo/internal/model"
)

const countryInfoFile = "countryInfo.txt"

// countryInfo.txt columns
const (
	colISO        = 0
	colISONumeric = 2
	colCountry    = 4
	colContinent  = 8
	colGeonameID  = 16
)

// Parser parses GeoNames data files
type Parser struct {
	dataDir string
}

// NewParser creates a new parser reading from the configured data directory
func NewParser(seederCfg config.SeederConfig) *Parser {
	return &Parser{dataDir: seederCfg.DataDir}
}

// ParseCountries parses countryInfo.txt (or a zip holding it) and adds the
// dissolved states GeoNames no longer lists
func (p *Parser) ParseCountries() ([]model.GeonamesCountry, error) {
	zipPath := filepath.Join(p.dataDir, "countryInfo.zip")
	if _, err := os.Stat(zipPath); err == nil {
		return p.parseCountriesFromZip(zipPath)
	}

	file, err := os.Open(filepath.Join(p.dataDir, countryInfoFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", countryInfoFile, err)
	}
	defer file.Close()

	return p.parseCountriesFromReader(file)
}

func (p *Parser) parseCountriesFromZip(zipPath string) ([]model.GeonamesCountry, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if strings.HasSuffix(f.Name, ".txt") {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open file in zip: %w", err)
			}
			defer rc.Close()
			return p.parseCountriesFromReader(rc)
		}
	}

	return nil, fmt.Errorf("no txt file found in zip")
}

func (p *Parser) parseCountriesFromReader(reader io.Reader) ([]model.GeonamesCountry, error) {
	var countries []model.GeonamesCountry
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := scanner.Text()

		// Skip comments
		if strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) <= colGeonameID {
			continue
		}

		code := parts[colISO]
		name := parts[colCountry]
		geonameID, err := strconv.Atoi(parts[colGeonameID])
		if code == "" || name == "" || err != nil || seen[code] {
			continue
		}
		numeric, _ := strconv.Atoi(parts[colISONumeric])

		countries = append(countries, model.GeonamesCountry{
			Name:        name,
			Code:        code,
			NumericCode: numeric,
			Continent:   parts[colContinent],
			GeonamesID:  geonameID,
		})
		seen[code] = true
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", countryInfoFile, err)
	}

	for _, c := range HistoricCountries() {
		if !seen[c.Code] {
			countries = append(countries, c)
			seen[c.Code] = true
		}
	}

	return countries, nil
}

// Package geo resolves request IPs to country/region/city for the
// visit-tracking ingest path.
package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"
)

// Info holds the fields a lookup can attribute to an IP.
type Info struct {
	Country string
	Region  string
	City    string
}

// Resolver maps an IP address to geo attributes.
type Resolver interface {
	Resolve(ip string) (*Info, error)
	Close() error
}

// MaxMindResolver implements Resolver against a MaxMind GeoLite2 City
// database file.
type MaxMindResolver struct {
	reader *maxminddb.Reader
}

// NewMaxMindResolver opens the mmdb file at dbPath.
func NewMaxMindResolver(dbPath string) (*MaxMindResolver, error) {
	reader, err := maxminddb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}
	return &MaxMindResolver{reader: reader}, nil
}

type cityRecord struct {
	Country struct {
		IsoCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Subdivisions []struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"subdivisions"`
}

// Resolve looks up the IP in the city database.
func (m *MaxMindResolver) Resolve(ip string) (*Info, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("invalid IP address: %s", ip)
	}

	var record cityRecord
	if err := m.reader.Lookup(parsed, &record); err != nil {
		return nil, err
	}

	info := &Info{
		Country: record.Country.IsoCode,
		City:    record.City.Names["en"],
	}
	if len(record.Subdivisions) > 0 {
		info.Region = record.Subdivisions[0].Names["en"]
	}
	return info, nil
}

// Close closes the GeoIP database.
func (m *MaxMindResolver) Close() error {
	if m.reader != nil {
		return m.reader.Close()
	}
	return nil
}

// NoopResolver is the fallback when no database is configured. Lookups
// succeed with empty attribution so ingest keeps working.
type NoopResolver struct{}

func (NoopResolver) Resolve(string) (*Info, error) { return &Info{}, nil }
func (NoopResolver) Close() error                  { return nil }

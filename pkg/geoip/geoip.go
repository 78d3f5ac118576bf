package geoip

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// countryLanguages maps ISO country codes to the site language most of
// their visitors read. Countries not listed have no fallback.
var countryLanguages = map[string]string{
	"IT": "it", "SM": "it", "VA": "it",
	"ES": "es", "MX": "es", "AR": "es", "CO": "es", "CL": "es", "PE": "es",
	"FR": "fr", "BE": "fr", "LU": "fr", "MC": "fr",
	"DE": "de", "AT": "de", "LI": "de",
	"RU": "ru", "BY": "ru", "KZ": "ru",
	"CN": "zh", "TW": "zh", "HK": "zh", "MO": "zh", "SG": "zh",
	"US": "en", "GB": "en", "IE": "en", "AU": "en", "NZ": "en", "CA": "en",
}

// LanguageForCountry returns the fallback language for an ISO country code,
// or "" when there is none.
func LanguageForCountry(isoCode string) string {
	return countryLanguages[strings.ToUpper(isoCode)]
}

// Service resolves client IPs to countries from a MaxMind City or Country
// database.
type Service struct {
	reader *geoip2.Reader
}

// NewService opens the .mmdb database at path.
func NewService(path string) (*Service, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database %s: %w", path, err)
	}
	return &Service{reader: reader}, nil
}

// Close releases the database.
func (s *Service) Close() error {
	if s.reader == nil {
		return nil
	}
	return s.reader.Close()
}

// CountryCode returns the ISO country code for ipAddress.
func (s *Service) CountryCode(ipAddress string) (string, error) {
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return "", fmt.Errorf("invalid ip address: %q", ipAddress)
	}

	record, err := s.reader.Country(ip)
	if err != nil {
		return "", err
	}
	return record.Country.IsoCode, nil
}

// LanguageForIP returns the fallback language for the country of ipAddress.
// Lookup failures yield "".
func (s *Service) LanguageForIP(ipAddress string) string {
	code, err := s.CountryCode(ipAddress)
	if err != nil {
		return ""
	}
	return LanguageForCountry(code)
}

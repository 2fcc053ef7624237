package fetchers

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"airmet/internal/csvio"
	"airmet/internal/models"
	"airmet/internal/reshape"
)

// LoadAirQualityCSV ingests a static air-quality CSV file. Both layouts are
// accepted: wide (date,pm25,no2[,city]) and long (date,pollutant,value
// [,city]); long input is pivoted to wide. Records missing a city get the
// configured one.
func LoadAirQualityCSV(path, city string) ([]models.AirQualityRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open air-quality CSV %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	header, err := r.Peek(512)
	if err != nil && len(header) == 0 {
		return nil, fmt.Errorf("failed to read air-quality CSV %s: %w", path, err)
	}

	var recs []models.AirQualityRecord
	if isLongForm(string(header)) {
		samples, err := csvio.ReadSamples(r)
		if err != nil {
			return nil, err
		}
		recs = reshape.LongToWide(samples)
	} else {
		recs, err = csvio.ReadAirQuality(r)
		if err != nil {
			return nil, err
		}
	}

	for i := range recs {
		if recs[i].City == "" {
			recs[i].City = city
		}
	}
	return recs, nil
}

// isLongForm inspects the header line for a pollutant/value column pair.
func isLongForm(head string) bool {
	line := head
	if idx := strings.IndexAny(line, "\r\n"); idx >= 0 {
		line = line[:idx]
	}
	line = strings.ToLower(line)
	return strings.Contains(line, "pollutant") && strings.Contains(line, "value")
}

package reports

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Labels resolves human-readable names for bucket and signal identifiers.
// It is injected into the assembler explicitly; the engine never consults an
// ambient translation singleton.
type Labels struct {
	printer *message.Printer
}

// NewLabels binds a language to a message catalog.
func NewLabels(tag language.Tag, cat catalog.Catalog) *Labels {
	return &Labels{printer: message.NewPrinter(tag, message.Catalog(cat))}
}

// DefaultCatalog carries the English and Czech label sets the dashboard ships
// with. Deployments may supply their own catalog instead.
func DefaultCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	labels := map[string][2]string{
		"segment." + BucketHigh:       {"High value", "Vysoká hodnota"},
		"segment." + BucketMedium:     {"Medium value", "Střední hodnota"},
		"segment." + BucketLow:        {"Low value", "Nízká hodnota"},
		"segment." + BucketFrequent:   {"Frequent", "Častý"},
		"segment." + BucketRegular:    {"Regular", "Pravidelný"},
		"segment." + BucketOccasional: {"Occasional", "Příležitostný"},
		"segment." + BucketOneTime:    {"One-time", "Jednorázový"},
	}
	for key, pair := range labels {
		_ = b.SetString(language.English, key, pair[0])
		_ = b.SetString(language.Czech, key, pair[1])
	}
	return b
}

// Bucket returns the display label for a canonical bucket name.
func (l *Labels) Bucket(name string) string {
	if l == nil || l.printer == nil {
		return name
	}
	return l.printer.Sprintf("segment." + name)
}

// Apply fills display labels on segment buckets in place.
func (l *Labels) Apply(buckets []SegmentBucket) {
	for i := range buckets {
		buckets[i].Label = l.Bucket(buckets[i].BucketName)
	}
}

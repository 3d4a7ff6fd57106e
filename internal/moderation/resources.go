package moderation

import (
	"embed"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

//go:embed resources/support.yml
var resourcesFS embed.FS

type Resource struct {
	Name    string `yaml:"name" json:"name"`
	Contact string `yaml:"contact" json:"contact"`
	URL     string `yaml:"url,omitempty" json:"url,omitempty"`
}

type supportEntry struct {
	Message   string     `yaml:"message"`
	Resources []Resource `yaml:"resources"`
}

type supportCatalogue struct {
	Severities map[int]supportEntry `yaml:"severities"`
}

var (
	catalogueOnce sync.Once
	catalogue     supportCatalogue
)

// supportContent returns the advisory message and graded resource list
// for a severity level; severity 0 carries none.
func supportContent(severity int) (string, []Resource) {
	catalogueOnce.Do(func() {
		raw, err := resourcesFS.ReadFile("resources/support.yml")
		if err != nil {
			log.WithError(err).Error("cant load support resources")
			return
		}
		if err := yaml.Unmarshal(raw, &catalogue); err != nil {
			log.WithError(err).Error("cant unmarshal support resources")
		}
	})

	entry, ok := catalogue.Severities[severity]
	if !ok {
		return "", nil
	}
	return entry.Message, entry.Resources
}

package coingecko

import (
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/iamwavecut/powerbot/resources"
)

const aliasesFile = "coins.yml"

var aliases = struct {
	once  sync.Once
	table map[string]string
}{}

func loadAliases() {
	aliases.table = make(map[string]string)
	raw, err := resources.FS.ReadFile(aliasesFile)
	if err != nil {
		log.WithError(err).Errorln("cant load coin aliases")
		return
	}
	if err := yaml.Unmarshal(raw, &aliases.table); err != nil {
		log.WithError(err).Errorln("cant unmarshal coin aliases")
	}
}

// ResolveCoinID maps a ticker such as "BTC" to its CoinGecko id. Anything not
// in the alias table is returned lower-cased.
func ResolveCoinID(input string) string {
	aliases.once.Do(loadAliases)
	lower := strings.ToLower(strings.TrimSpace(input))
	if id, ok := aliases.table[lower]; ok {
		return id
	}
	return lower
}

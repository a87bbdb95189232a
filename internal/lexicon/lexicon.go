package lexicon

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/viper"
)

type CrisisTier string

const (
	TierModerate CrisisTier = "moderate"
	TierSevere   CrisisTier = "severe"
	TierImminent CrisisTier = "imminent"
)

// rank orders tiers so ties always resolve to the higher one.
func (t CrisisTier) rank() int {
	switch t {
	case TierImminent:
		return 3
	case TierSevere:
		return 2
	case TierModerate:
		return 1
	}
	return 0
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
)

// Lexicon holds the static term tables used for classification. It is built
// once at startup and never mutated, so concurrent lookups need no locking.
type Lexicon struct {
	crisis    map[string]CrisisTier
	sentiment map[string]Sentiment
	topics    map[string]string
}

// Empty returns a lexicon with no terms. Classification against it finds no
// matches but never errors.
func Empty() *Lexicon {
	return &Lexicon{
		crisis:    map[string]CrisisTier{},
		sentiment: map[string]Sentiment{},
		topics:    map[string]string{},
	}
}

// Default returns the built-in term tables.
func Default() *Lexicon {
	return &Lexicon{
		crisis: map[string]CrisisTier{
			"suicide":            TierImminent,
			"kill myself":        TierImminent,
			"end it all":         TierImminent,
			"end my life":        TierImminent,
			"don't want to live": TierImminent,
			"no reason to live":  TierImminent,
			"better off dead":    TierImminent,
			"hurt myself":        TierSevere,
			"harm myself":        TierSevere,
			"self-harm":          TierSevere,
			"give up":            TierSevere,
			"can't go on":        TierSevere,
			"emergency":          TierModerate,
			"urgent":             TierModerate,
			"help now":           TierModerate,
			"crisis":             TierModerate,
			"panic":              TierModerate,
			"overwhelmed":        TierModerate,
			"can't cope":         TierModerate,
		},
		sentiment: map[string]Sentiment{
			"better":      SentimentPositive,
			"improved":    SentimentPositive,
			"happy":       SentimentPositive,
			"good":        SentimentPositive,
			"great":       SentimentPositive,
			"progress":    SentimentPositive,
			"achievement": SentimentPositive,
			"positive":    SentimentPositive,
			"grateful":    SentimentPositive,
			"thanks":      SentimentPositive,
			"helpful":     SentimentPositive,
			"hopeful":     SentimentPositive,
			"calm":        SentimentPositive,
			"proud":       SentimentPositive,
			"sad":         SentimentNegative,
			"depressed":   SentimentNegative,
			"anxious":     SentimentNegative,
			"worried":     SentimentNegative,
			"struggling":  SentimentNegative,
			"difficult":   SentimentNegative,
			"negative":    SentimentNegative,
			"hopeless":    SentimentNegative,
			"bad":         SentimentNegative,
			"lonely":      SentimentNegative,
			"angry":       SentimentNegative,
			"tired":       SentimentNegative,
			"stress":      SentimentNegative,
			"scared":      SentimentNegative,
			"awful":       SentimentNegative,
			"tough":       SentimentNegative,
		},
		topics: map[string]string{
			"anxiety":      "anxiety",
			"anxious":      "anxiety",
			"worry":        "anxiety",
			"stress":       "stress",
			"pressure":     "stress",
			"work":         "work",
			"job":          "work",
			"boss":         "work",
			"deadline":     "work",
			"family":       "relationships",
			"friend":       "relationships",
			"partner":      "relationships",
			"relationship": "relationships",
			"marriage":     "relationships",
			"sleep":        "sleep",
			"insomnia":     "sleep",
			"nightmare":    "sleep",
			"drinking":     "substance use",
			"alcohol":      "substance use",
			"drug":         "substance use",
			"relapse":      "substance use",
			"sober":        "substance use",
			"addiction":    "substance use",
			"therapy":      "wellness",
			"meditation":   "wellness",
			"exercise":     "wellness",
			"breathing":    "wellness",
			"coping":       "wellness",
			"recovery":     "wellness",
			"treatment":    "wellness",
		},
	}
}

type fileFormat struct {
	Crisis    map[string]string `mapstructure:"crisis"`
	Sentiment map[string]string `mapstructure:"sentiment"`
	Topics    map[string]string `mapstructure:"topics"`
}

// Load reads term tables from a YAML file. Terms are lowercased on load so
// lookups stay case-insensitive.
func Load(path string) (*Lexicon, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	var raw fileFormat
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file: %w", err)
	}

	lex := Empty()
	for term, tier := range raw.Crisis {
		switch CrisisTier(tier) {
		case TierModerate, TierSevere, TierImminent:
			lex.crisis[strings.ToLower(term)] = CrisisTier(tier)
		default:
			return nil, fmt.Errorf("unknown crisis tier %q for term %q", tier, term)
		}
	}
	for term, polarity := range raw.Sentiment {
		switch Sentiment(polarity) {
		case SentimentPositive, SentimentNegative:
			lex.sentiment[strings.ToLower(term)] = Sentiment(polarity)
		default:
			return nil, fmt.Errorf("unknown sentiment %q for term %q", polarity, term)
		}
	}
	for term, topic := range raw.Topics {
		lex.topics[strings.ToLower(term)] = topic
	}
	return lex, nil
}

func (l *Lexicon) IsEmpty() bool {
	return len(l.crisis) == 0 && len(l.sentiment) == 0 && len(l.topics) == 0
}

// HighestCrisisTier scans text for crisis terms and returns the highest
// matching tier.
func (l *Lexicon) HighestCrisisTier(text string) (CrisisTier, bool) {
	lowered := strings.ToLower(text)
	var best CrisisTier
	found := false
	for term, tier := range l.crisis {
		if containsTerm(lowered, term) && tier.rank() > best.rank() {
			best = tier
			found = true
		}
	}
	return best, found
}

// SentimentCounts returns how many positive and negative terms occur in text.
func (l *Lexicon) SentimentCounts(text string) (positive, negative int) {
	lowered := strings.ToLower(text)
	for term, polarity := range l.sentiment {
		if !containsTerm(lowered, term) {
			continue
		}
		if polarity == SentimentPositive {
			positive++
		} else {
			negative++
		}
	}
	return positive, negative
}

// Topics returns the distinct topic labels matched in text, sorted for
// deterministic output.
func (l *Lexicon) Topics(text string) []string {
	lowered := strings.ToLower(text)
	seen := make(map[string]struct{})
	for term, topic := range l.topics {
		if containsTerm(lowered, term) {
			seen[topic] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	topics := make([]string, 0, len(seen))
	for topic := range seen {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// stemMinLen is the minimum term length for prefix (stem) matching; shorter
// terms must match a whole word so "sad" does not match "saddle".
const stemMinLen = 4

// containsTerm reports whether term occurs in lowered text at a word
// boundary. A term matches a whole word, or the start of a word when the term
// is long enough to act as a stem ("stress" matches "stressed"). Multi-word
// phrases always require a boundary on both sides.
func containsTerm(text, term string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		if boundaryBefore(text, idx) && boundaryAfterOK(text, term, idx+len(term)) {
			return true
		}
		start = idx + 1
	}
}

func boundaryBefore(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:idx])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfterOK(text, term string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		return true
	}
	// Word continues: allow it only for single-word stems.
	return !strings.ContainsRune(term, ' ') && utf8.RuneCountInString(term) >= stemMinLen
}

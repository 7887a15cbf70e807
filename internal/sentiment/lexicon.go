package sentiment

// lexicon.go — scorer de sentimiento tipo VADER para titulares.
//
// Suma las valencias del léxico sobre los tokens del titular, con
// negación (ventana de 3 tokens, factor -0.74) e intensificadores
// (±0.293), y normaliza a compound ∈ [-1, 1] con score/√(score²+α).
// Es determinista: el mismo titular produce siempre el mismo score.

import (
	"math"
	"strings"
)

const (
	negationDampen = -0.74
	boosterStep    = 0.293
	normAlpha      = 15.0
	negationWindow = 3
)

// valences es el léxico: palabra → valencia en [-4, 4], sesgado a
// vocabulario de titulares financieros.
var valences = map[string]float64{
	// positivo
	"gain": 1.8, "gains": 1.8, "rally": 2.1, "rallies": 2.1, "surge": 2.3,
	"surges": 2.3, "soar": 2.6, "soars": 2.6, "jump": 1.9, "jumps": 1.9,
	"rise": 1.5, "rises": 1.5, "climb": 1.5, "climbs": 1.5, "beat": 1.9,
	"beats": 1.9, "record": 1.4, "strong": 1.7, "growth": 1.6, "profit": 1.8,
	"profits": 1.8, "upgrade": 1.9, "upgraded": 1.9, "outperform": 2.0,
	"bullish": 2.2, "boom": 2.2, "win": 1.9, "wins": 1.9, "success": 2.0,
	"successful": 2.0, "top": 1.2, "tops": 1.5, "high": 1.0, "higher": 1.2,
	"best": 2.4, "good": 1.9, "great": 2.7, "positive": 1.9, "optimistic": 1.9,
	"recovery": 1.5, "rebound": 1.6, "rebounds": 1.6, "breakthrough": 2.1,
	"approve": 1.6, "approves": 1.6, "approved": 1.6, "dividend": 0.9,
	"buyback": 1.1, "expand": 1.2, "expands": 1.2, "exceed": 1.8, "exceeds": 1.8,
	// negativo
	"loss": -1.8, "losses": -1.8, "fall": -1.5, "falls": -1.5, "drop": -1.7,
	"drops": -1.7, "plunge": -2.4, "plunges": -2.4, "crash": -2.8,
	"crashes": -2.8, "tumble": -2.1, "tumbles": -2.1, "sink": -1.9,
	"sinks": -1.9, "slump": -2.0, "slumps": -2.0, "decline": -1.5,
	"declines": -1.5, "weak": -1.6, "miss": -1.7, "misses": -1.7,
	"downgrade": -1.9, "downgraded": -1.9, "underperform": -2.0,
	"bearish": -2.2, "bust": -2.1, "lose": -1.8, "loses": -1.8, "fail": -2.2,
	"fails": -2.2, "failure": -2.3, "low": -1.0, "lower": -1.2, "worst": -2.7,
	"bad": -2.1, "poor": -1.9, "negative": -1.9, "pessimistic": -1.9,
	"lawsuit": -1.7, "fraud": -2.9, "probe": -1.4, "investigation": -1.4,
	"recall": -1.6, "bankruptcy": -3.0, "bankrupt": -3.0, "layoff": -2.0,
	"layoffs": -2.0, "cut": -1.2, "cuts": -1.2, "warning": -1.6, "warns": -1.6,
	"risk": -1.1, "risks": -1.1, "fear": -1.9, "fears": -1.9, "selloff": -2.2,
	"debt": -1.2, "default": -2.4, "fine": -1.3, "fined": -1.5, "halt": -1.5,
	"halts": -1.5, "crisis": -2.4, "scandal": -2.4, "shortfall": -1.8,
}

// negations invierte (atenuando) la valencia de la palabra que sigue.
var negations = map[string]bool{
	"not": true, "no": true, "never": true, "without": true, "neither": true,
	"nor": true, "cannot": true, "isnt": true, "wasnt": true, "doesnt": true,
	"dont": true, "didnt": true, "wont": true, "cant": true, "couldnt": true,
	"shouldnt": true, "wouldnt": true, "hasnt": true, "havent": true,
}

// boosters intensifican o atenúan la valencia de la palabra que sigue.
var boosters = map[string]float64{
	"very": boosterStep, "extremely": boosterStep, "hugely": boosterStep,
	"massively": boosterStep, "sharply": boosterStep, "significantly": boosterStep,
	"strongly": boosterStep, "slightly": -boosterStep, "marginally": -boosterStep,
	"somewhat": -boosterStep, "barely": -boosterStep, "modestly": -boosterStep,
}

// Analyzer implementa ports.SentimentScorer.
type Analyzer struct{}

// NewAnalyzer crea el scorer de léxico.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// Compound devuelve el score compound ∈ [-1, 1] del texto.
func (a *Analyzer) Compound(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var sum float64
	for i, tok := range tokens {
		valence, ok := valences[tok]
		if !ok {
			continue
		}

		// intensificadores y negación miran hacia atrás desde el token
		for j := 1; j <= negationWindow && i-j >= 0; j++ {
			prev := tokens[i-j]
			if step, ok := boosters[prev]; ok {
				if valence < 0 {
					valence -= step
				} else {
					valence += step
				}
			}
			if negations[prev] {
				valence *= negationDampen
				break
			}
		}

		sum += valence
	}

	return normalize(sum)
}

// normalize mapea la suma de valencias a [-1, 1].
func normalize(score float64) float64 {
	norm := score / math.Sqrt(score*score+normAlpha)
	if norm > 1 {
		return 1
	}
	if norm < -1 {
		return -1
	}
	return norm
}

func tokenize(text string) []string {
	var tokens []string
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		tok := strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, raw)
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

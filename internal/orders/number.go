package orders

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const numberSuffixLen = 4

var base36Alphabet = []rune("0123456789abcdefghijklmnopqrstuvwxyz")

// NumberGenerator produces human-readable order numbers of the form
// ORD-<timestamp>-<suffix>, where the timestamp is the creation instant in
// milliseconds rendered as uppercase base36 and the suffix is 4 random
// base36 characters. The suffix disambiguates orders created within the
// same millisecond; the unique index on order_number is the real guarantee
// and collisions are retried by the caller.
type NumberGenerator struct {
	now    func() time.Time
	suffix func() string
}

// NewNumberGenerator builds a generator on the system clock.
func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{
		now:    time.Now,
		suffix: randomSuffix,
	}
}

// Next returns a fresh order number.
func (g *NumberGenerator) Next() string {
	millis := g.now().UnixMilli()
	stamp := strings.ToUpper(strconv.FormatInt(millis, 36))
	return fmt.Sprintf("ORD-%s-%s", stamp, strings.ToUpper(g.suffix()))
}

func randomSuffix() string {
	runes := make([]rune, numberSuffixLen)
	for i := range runes {
		runes[i] = base36Alphabet[rand.IntN(len(base36Alphabet))]
	}
	return string(runes)
}

package bookings

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ReferenceGenerator produces references like BK-2024-7QX2MA
type ReferenceGenerator struct {
	prefix string
	now    func() time.Time
}

func NewReferenceGenerator(prefix string) *ReferenceGenerator {
	if prefix == "" {
		prefix = "BK"
	}
	return &ReferenceGenerator{prefix: prefix, now: time.Now}
}

func (g *ReferenceGenerator) Next() (string, error) {
	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generate booking reference: %w", err)
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%d-%s", g.prefix, g.now().Year(), suffix), nil
}

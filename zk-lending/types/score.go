package types

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Layout of a score secret, big-endian:
//
//	[0]     version, always ScoreSecretVersion
//	[1:3]   credit score, uint16
//	[3:32]  random salt
//
// The leading version byte keeps the value below the BN254 scalar modulus,
// so a score secret is always a canonical field element.
const (
	ScoreSecretVersion = 0x01
	ScoreSaltSize      = 29

	MinCreditScore = 300
	MaxCreditScore = 850
)

var ErrScoreSecret = errors.New("malformed score secret")

// NewScoreSecret packs a credit score and salt into a secret.
func NewScoreSecret(score uint16, salt [ScoreSaltSize]byte) (Secret, error) {
	var s Secret
	if score < MinCreditScore || score > MaxCreditScore {
		return s, fmt.Errorf("%w: credit score %d not in [%d, %d]", ErrOutOfRange, score, MinCreditScore, MaxCreditScore)
	}
	s[0] = ScoreSecretVersion
	binary.BigEndian.PutUint16(s[1:3], score)
	copy(s[3:], salt[:])
	return s, nil
}

// ScoreOf unpacks a secret built by NewScoreSecret.
func ScoreOf(s Secret) (uint16, [ScoreSaltSize]byte, error) {
	var salt [ScoreSaltSize]byte
	if s[0] != ScoreSecretVersion {
		return 0, salt, fmt.Errorf("%w: version %d", ErrScoreSecret, s[0])
	}
	score := binary.BigEndian.Uint16(s[1:3])
	if score < MinCreditScore || score > MaxCreditScore {
		return 0, salt, fmt.Errorf("%w: credit score %d", ErrScoreSecret, score)
	}
	copy(salt[:], s[3:])
	return score, salt, nil
}

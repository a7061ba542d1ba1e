package telegram

import (
	"regexp"
	"strings"
)

var joinLinkPattern = regexp.MustCompile(`^(?:https?://)?t(?:elegram)?\.(?:dog|me)/(.+)$`)

// JoinTarget is the classified form of a t.me link: either an invite hash
// (joinchat links) or a public channel/supergroup identifier. Exactly one
// field is set.
type JoinTarget struct {
	InviteHash string
	Channel    string
}

// ParseJoinLink classifies an invite link. Classification is purely
// syntactic: the hash or channel name is not validated.
func ParseJoinLink(arg string) (JoinTarget, bool) {
	m := joinLinkPattern.FindStringSubmatch(strings.TrimSpace(arg))
	if m == nil {
		return JoinTarget{}, false
	}
	rest := m[1]
	if hash, ok := strings.CutPrefix(rest, "joinchat/"); ok {
		if hash == "" {
			return JoinTarget{}, false
		}
		return JoinTarget{InviteHash: hash}, true
	}
	return JoinTarget{Channel: rest}, true
}

package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidID is returned for identifiers that do not follow the
// <type><number>-<session>[-<code>] convention.
var ErrInvalidID = errors.New("invalid identifier")

// BillTypes lists the bill type prefixes in the order GPO publishes them.
var BillTypes = []string{"hr", "hres", "hjres", "hconres", "s", "sres", "sjres", "sconres"}

var (
	billIDPattern    = regexp.MustCompile(`^(hr|hres|hjres|hconres|s|sres|sjres|sconres)(\d+)-(\d+)$`)
	versionIDPattern = regexp.MustCompile(`^(hr|hres|hjres|hconres|s|sres|sjres|sconres)(\d+)-(\d+)-([a-z_]+)$`)
)

// BillRef is the parsed form of a bill id.
type BillRef struct {
	Type    string
	Number  int
	Session int
}

// ID formats the reference back into a bill id.
func (r BillRef) ID() string {
	return fmt.Sprintf("%s%d-%d", r.Type, r.Number, r.Session)
}

// ParseBillID splits a bill id such as "hr3590-111".
func ParseBillID(id string) (BillRef, error) {
	m := billIDPattern.FindStringSubmatch(id)
	if m == nil {
		return BillRef{}, fmt.Errorf("%w: bill id %q", ErrInvalidID, id)
	}
	return refFromMatch(m[1], m[2], m[3])
}

// ParseVersionID splits a bill_version_id such as "hr3590-111-enr".
func ParseVersionID(id string) (BillRef, string, error) {
	m := versionIDPattern.FindStringSubmatch(id)
	if m == nil {
		return BillRef{}, "", fmt.Errorf("%w: version id %q", ErrInvalidID, id)
	}
	ref, err := refFromMatch(m[1], m[2], m[3])
	if err != nil {
		return BillRef{}, "", err
	}
	return ref, m[4], nil
}

// VersionID joins a bill id and a version code.
func VersionID(billID, code string) string {
	return billID + "-" + code
}

func refFromMatch(billType, number, session string) (BillRef, error) {
	n, err := strconv.Atoi(number)
	if err != nil {
		return BillRef{}, fmt.Errorf("%w: number %q", ErrInvalidID, number)
	}
	sess, err := strconv.Atoi(session)
	if err != nil {
		return BillRef{}, fmt.Errorf("%w: session %q", ErrInvalidID, session)
	}
	return BillRef{Type: billType, Number: n, Session: sess}, nil
}

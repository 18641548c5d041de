package scenario

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aerogrid/netmap/model"
	satellite "github.com/joshuaferrara/go-satellite"
)

var ErrInvalidTLE = errors.New("invalid TLE")

const tleLineLen = 69

// checkTLE validates line shape, checksums and every numeric column
// go-satellite parses. go-satellite aborts the process on malformed
// input, so nothing reaches it unchecked.
func checkTLE(lines []string) (string, string, error) {
	if len(lines) != 2 {
		return "", "", fmt.Errorf("%w: want 2 lines, got %d", ErrInvalidTLE, len(lines))
	}
	l1, l2 := strings.TrimRight(lines[0], " \r\n"), strings.TrimRight(lines[1], " \r\n")
	for i, l := range []string{l1, l2} {
		if len(l) != tleLineLen {
			return "", "", fmt.Errorf("%w: line %d has %d characters", ErrInvalidTLE, i+1, len(l))
		}
		if l[0] != byte('1'+i) || l[1] != ' ' {
			return "", "", fmt.Errorf("%w: line %d must start with %q", ErrInvalidTLE, i+1, fmt.Sprintf("%d ", i+1))
		}
		if tleChecksum(l) != int(l[68]-'0') {
			return "", "", fmt.Errorf("%w: line %d checksum mismatch", ErrInvalidTLE, i+1)
		}
	}
	if err := checkTLEFields(l1, l2); err != nil {
		return "", "", err
	}
	return l1, l2, nil
}

type tleField struct {
	name  string
	value string
	int   bool
}

// tleFields rebuilds each column the way go-satellite's TLEToSat does.
func tleFields(l1, l2 string) []tleField {
	squeeze := func(s string) string { return strings.Replace(s, " ", "", 2) }
	return []tleField{
		{"catalog number", strings.TrimSpace(l1[2:7]), true},
		{"epoch year", l1[18:20], true},
		{"epoch day", l1[20:32], false},
		{"mean motion derivative", squeeze(l1[33:43]), false},
		{"mean motion second derivative", squeeze(l1[44:45] + "." + l1[45:50] + "e" + l1[50:52]), false},
		{"bstar", squeeze(l1[53:54] + "." + l1[54:59] + "e" + l1[59:61]), false},
		{"inclination", squeeze(l2[8:16]), false},
		{"right ascension", squeeze(l2[17:25]), false},
		{"eccentricity", "." + l2[26:33], false},
		{"argument of perigee", squeeze(l2[34:42]), false},
		{"mean anomaly", squeeze(l2[43:51]), false},
		{"mean motion", squeeze(l2[52:63]), false},
	}
}

func checkTLEFields(l1, l2 string) error {
	for _, f := range tleFields(l1, l2) {
		var err error
		if f.int {
			_, err = strconv.ParseInt(f.value, 10, 0)
		} else {
			_, err = strconv.ParseFloat(f.value, 64)
		}
		if err != nil {
			return fmt.Errorf("%w: %s %q is not a number", ErrInvalidTLE, f.name, f.value)
		}
	}
	return nil
}

func tleChecksum(line string) int {
	sum := 0
	for _, c := range line[:68] {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

// propagateTLE returns the sub-satellite point at t.
func propagateTLE(lines []string, t time.Time) (model.LatLng, error) {
	l1, l2, err := checkTLE(lines)
	if err != nil {
		return model.LatLng{}, err
	}
	sat := satellite.TLEToSat(l1, l2, satellite.GravityWGS72)

	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	_, _, lla := satellite.ECIToLLA(posECI, gmst)

	pos := model.LatLng{
		Lat: lla.Latitude * 180 / math.Pi,
		Lng: normalizeLng(lla.Longitude * 180 / math.Pi),
	}
	if !pos.Valid() {
		return model.LatLng{}, fmt.Errorf("%w: propagation diverged", ErrInvalidTLE)
	}
	return pos, nil
}

func normalizeLng(deg float64) float64 {
	deg = math.Mod(deg+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}

package modem

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/gsmgw/at"
)

// EarthMeanRadius is the radius in metres used by Distance.
const EarthMeanRadius = 6372797.560856

// Position is a location in decimal degrees.
type Position struct {
	Lat float64
	Lon float64
}

// GPSFix is the fix state reported by the GPS receiver.
type GPSFix int

const (
	FixUnknown GPSFix = iota
	NoFix
	Fix2D
	Fix3D
)

func (f GPSFix) String() string {
	switch f {
	case NoFix:
		return "no fix"
	case Fix2D:
		return "2D fix"
	case Fix3D:
		return "3D fix"
	default:
		return "unknown"
	}
}

func gpsCommand(text string, timeout time.Duration) Command {
	return okCommand(text, timeout, 100*time.Millisecond, 5)
}

var (
	gpsInitSequence = []Command{
		gpsCommand(at.CmdGPSBaud, 1200*time.Millisecond),
		gpsCommand(at.CmdGPSOutputOff, 1200*time.Millisecond),
		gpsCommand(at.CmdGPSPowerOn, 1200*time.Millisecond),
		gpsCommand(at.CmdGPSColdReset, 1200*time.Millisecond),
		gpsCommand(at.CmdGPSPowerOff, 2*time.Second),
	}
	gpsStartSequence = []Command{
		gpsCommand(at.CmdGPSPowerOn, 900*time.Millisecond),
		gpsCommand(at.CmdGPSHotReset, 900*time.Millisecond),
	}
	gpsStopSequence = []Command{
		gpsCommand(at.CmdGPSPowerOff, 900*time.Millisecond),
	}

	cmdGPSStatus = okCommand(at.CmdGPSStatus, 900*time.Millisecond, 50*time.Millisecond, 2)
	cmdGPSInfo   = okCommand(at.CmdGPSInfo, 900*time.Millisecond, 50*time.Millisecond, 2)
)

// InitGPS configures the GPS receiver and cold resets it. It is needed once
// per module and leaves the receiver powered off.
func (m *Modem) InitGPS(ctx context.Context) error {
	return m.gpsSequence(ctx, "init", gpsInitSequence)
}

// StartGPS powers the GPS receiver on.
func (m *Modem) StartGPS(ctx context.Context) error {
	return m.gpsSequence(ctx, "start", gpsStartSequence)
}

// StopGPS powers the GPS receiver off.
func (m *Modem) StopGPS(ctx context.Context) error {
	return m.gpsSequence(ctx, "stop", gpsStopSequence)
}

func (m *Modem) gpsSequence(ctx context.Context, name string, cmds []Command) error {
	release, err := m.hold(LineCommand)
	if err != nil {
		return err
	}
	defer release()

	if err := m.sendAll(ctx, cmds...); err != nil {
		return fmt.Errorf("GPS %s: %w", name, err)
	}
	return nil
}

// GPSStatus returns the fix state of the receiver.
func (m *Modem) GPSStatus(ctx context.Context) (GPSFix, error) {
	release, err := m.hold(LineCommand)
	if err != nil {
		return FixUnknown, err
	}
	defer release()

	return m.gpsStatus(ctx)
}

func (m *Modem) gpsStatus(ctx context.Context) (GPSFix, error) {
	if err := m.sendAll(ctx, cmdGPSStatus); err != nil {
		return FixUnknown, err
	}
	resp := m.at.Buffer().String()
	i := strings.Index(resp, at.GPSStatus)
	if i < 0 {
		return FixUnknown, fmt.Errorf("malformed GPS status: %q", resp)
	}
	return ParseGPSStatus(strings.TrimSpace(strings.SplitN(resp[i:], at.CR, 2)[0]))
}

// ParseGPSStatus parses a "+CGPSSTATUS: Location 3D Fix" line.
func ParseGPSStatus(line string) (GPSFix, error) {
	if !strings.HasPrefix(line, at.GPSStatus) {
		return FixUnknown, errors.New("unknown header")
	}

	switch strings.TrimSpace(strings.TrimPrefix(line, at.GPSStatus)) {
	case at.GPSFix3D:
		return Fix3D, nil
	case at.GPSFix2D:
		return Fix2D, nil
	case at.GPSNotFix:
		return NoFix, nil
	case at.GPSFixUnknown:
		return FixUnknown, nil
	default:
		return FixUnknown, fmt.Errorf("unknown GPS status %q", line)
	}
}

// CheckLocation returns the current position. It fails with ErrNoFix
// unless the receiver has a 2D or 3D fix.
func (m *Modem) CheckLocation(ctx context.Context) (Position, error) {
	release, err := m.hold(LineCommand)
	if err != nil {
		return Position{}, err
	}
	defer release()

	fix, err := m.gpsStatus(ctx)
	if err != nil {
		return Position{}, err
	}
	if fix != Fix2D && fix != Fix3D {
		return Position{}, ErrNoFix
	}

	if err := m.sendAll(ctx, cmdGPSInfo); err != nil {
		return Position{}, err
	}
	return parseGPSInfo(m.at.Buffer().String())
}

// parseGPSInfo parses an AT+CGPSINF=0 response:
//
//	0,17446.647913,-4117.068521,0.082149,20131025231125.000,534,5,0.000000,0.000000
//
// The fields are mode, longitude, latitude, altitude, UTC time, time to
// first fix, satellites, speed and course.
func parseGPSInfo(resp string) (Position, error) {
	var record string
	for _, line := range at.Lines([]byte(resp)) {
		line = strings.TrimPrefix(line, at.GPSInfo)
		if strings.Count(line, ",") >= 2 {
			record = strings.TrimSpace(line)
			break
		}
	}
	fields := strings.Split(record, ",")
	if len(fields) < 3 {
		return Position{}, fmt.Errorf("malformed GPS info: %q", resp)
	}

	lon, err := DegreeMinutes(fields[1])
	if err != nil {
		return Position{}, fmt.Errorf("longitude: %w", err)
	}
	lat, err := DegreeMinutes(fields[2])
	if err != nil {
		return Position{}, fmt.Errorf("latitude: %w", err)
	}
	return Position{Lat: lat, Lon: lon}, nil
}

// DegreeMinutes converts a (-)DDDMM.mmmmmm coordinate to decimal degrees.
func DegreeMinutes(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	neg := v < 0
	v = math.Abs(v)

	deg := math.Floor(v / 100)
	minutes := v - deg*100
	deg += minutes / 60

	if neg {
		deg = -deg
	}
	return deg, nil
}

// Distance returns the great-circle distance between two positions in
// metres.
func Distance(from, to Position) float64 {
	const rad = math.Pi / 180

	latHav := math.Pow(math.Sin((from.Lat-to.Lat)*rad*0.5), 2)
	lonHav := math.Pow(math.Sin((from.Lon-to.Lon)*rad*0.5), 2)
	return 2 * math.Asin(math.Sqrt(latHav+math.Cos(from.Lat*rad)*math.Cos(to.Lat*rad)*lonHav)) * EarthMeanRadius
}

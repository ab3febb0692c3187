package overlay

import (
	"bufio"
	"bytes"
	"os/exec"
	"runtime"
	"strings"
)

// EnumerateMonitors probes the attached displays. The window toolkit does
// not expose monitor enumeration, so this shells out to the platform's
// display lister where one exists and degrades to a single primary monitor
// otherwise. The daemon calls it once at startup; displays attached or
// removed later are not picked up.
func EnumerateMonitors() []Monitor {
	switch runtime.GOOS {
	case "linux":
		if mons := xrandrMonitors(); len(mons) > 0 {
			return mons
		}
	}
	return []Monitor{{ID: "primary", Name: "Primary Display"}}
}

// xrandrMonitors parses `xrandr --listmonitors` output of the form
//
//	Monitors: 2
//	 0: +*eDP-1 2256/285x1504/190+0+0  eDP-1
//	 1: +DP-3 2560/600x1440/340+2256+0  DP-3
func xrandrMonitors() []Monitor {
	out, err := exec.Command("xrandr", "--listmonitors").Output()
	if err != nil {
		return nil
	}

	var mons []Monitor
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || !strings.HasSuffix(fields[0], ":") || fields[0] == "Monitors:" {
			continue
		}
		name := fields[len(fields)-1]
		mons = append(mons, Monitor{ID: name, Name: name})
	}
	return mons
}

//go:build linux

package sysmon

import (
	"os"
	"strconv"
	"strings"

	"hybridd/pkg/types"
)

const powerSupplyBase = "/sys/class/power_supply/BAT0"

// probeResources reads battery state from sysfs and available memory from
// /proc/meminfo. Machines without a battery (desktops, containers) report
// BatteryUnknown rather than failing.
func probeResources() types.Resources {
	res := types.Resources{
		BatteryPercent: types.BatteryUnknown,
		AvailableRAMMB: readAvailableRAMMB(),
	}
	if data, err := os.ReadFile(powerSupplyBase + "/capacity"); err == nil {
		if pct, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && pct >= 0 && pct <= 100 {
			res.BatteryPercent = pct
		}
	}
	if data, err := os.ReadFile(powerSupplyBase + "/status"); err == nil {
		res.Charging = strings.TrimSpace(string(data)) == "Charging"
	}
	return res
}

// readAvailableRAMMB parses MemAvailable from /proc/meminfo. Returns 0 when
// unreadable; callers treat 0 as "unknown, assume sufficient".
func readAvailableRAMMB() int {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "MemAvailable:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0
		}
		return kb / 1024
	}
	return 0
}

//go:build !linux

package sysmon

import "hybridd/pkg/types"

// probeResources is a stub for platforms without a sysfs power supply
// interface. Battery reads as unknown, which selection treats as sufficient.
func probeResources() types.Resources {
	return types.Resources{BatteryPercent: types.BatteryUnknown}
}

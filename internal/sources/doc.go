// Package sources implements the concrete scan sources fed to the
// aggregation pipeline.
//
// Four sources are provided, in priority order:
//
//   - ble: Bluetooth Low Energy advertisement scanning through the
//     platform adapter
//   - classic: BR/EDR inquiry through BlueZ tooling (Linux only)
//   - sysreg: devices recorded by the operating system, typically paired
//     devices (bluetoothctl, system_profiler, or PnP enumeration)
//   - mdns: multicast DNS presence hints for devices that publish an
//     address in their TXT records, such as Freebox servers
//
// Every source degrades independently. A source that cannot run on the
// current host returns an unavailability error from Observe and the
// aggregator reports it alongside the results of the sources that could.
package sources

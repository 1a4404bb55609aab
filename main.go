package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"apwire.dev/apwire/cmd"
	"apwire.dev/apwire/internal/device"
)

const defaultConfig = "/etc/apwire/apwire.hcl"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "connect":
		fs := flag.NewFlagSet("connect", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(os.Args[2:])
		err = cmd.RunConnect(*configFile)

	case "status":
		fs := flag.NewFlagSet("status", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(os.Args[2:])
		err = cmd.RunStatus(*configFile)

	case "sensor":
		fs := flag.NewFlagSet("sensor", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(os.Args[2:])
		err = cmd.RunSensor(*configFile)

	case "mqtt":
		err = runMQTT(os.Args[2:])

	case "gpio":
		err = runGPIO(os.Args[2:])

	case "net":
		err = runNet(os.Args[2:])

	case "passwd":
		fs := flag.NewFlagSet("passwd", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(os.Args[2:])
		if fs.NArg() != 1 {
			err = fmt.Errorf("usage: apwire passwd [-config file] <new-password>")
			break
		}
		err = cmd.RunPasswd(*configFile, fs.Arg(0))

	case "sensors":
		err = runSensors(os.Args[2:])

	case "restart":
		fs := flag.NewFlagSet("restart", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(os.Args[2:])
		err = cmd.RunRestart(*configFile)

	case "factory-reset":
		fs := flag.NewFlagSet("factory-reset", flag.ExitOnError)
		configFile := configFlag(fs)
		yes := fs.Bool("yes", false, "Skip the confirmation prompt")
		fs.Parse(os.Args[2:])
		err = cmd.RunFactoryReset(*configFile, *yes)

	case "diag":
		fs := flag.NewFlagSet("diag", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(os.Args[2:])
		err = cmd.RunDiag(*configFile)

	case "scan":
		fs := flag.NewFlagSet("scan", flag.ExitOnError)
		configFile := configFlag(fs)
		host := fs.String("host", "", "Host to scan (defaults to the device address)")
		portList := fs.String("ports", "80,8080,5000,1880,1883,8266", "Comma-separated ports")
		fs.Parse(os.Args[2:])
		var ports []int
		ports, err = parsePorts(*portList)
		if err != nil {
			break
		}
		err = cmd.RunScan(*configFile, *host, ports)

	case "help", "-h", "--help":
		printUsage()

	case "version":
		fmt.Println("apwire " + version)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var version = "dev"

func configFlag(fs *flag.FlagSet) *string {
	configFile := fs.String("config", defaultConfig, "Configuration file")
	fs.StringVar(configFile, "c", defaultConfig, "Configuration file (short)")
	return configFile
}

func runMQTT(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: apwire mqtt <get|set|publish> [flags]")
	}
	switch args[0] {
	case "get":
		fs := flag.NewFlagSet("mqtt get", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(args[1:])
		return cmd.RunMQTTGet(*configFile)

	case "set":
		fs := flag.NewFlagSet("mqtt set", flag.ExitOnError)
		configFile := configFlag(fs)
		enabled := fs.Bool("enabled", true, "Enable MQTT publishing")
		broker := fs.String("broker", "", "Broker host")
		port := fs.Int("port", 1883, "Broker port")
		username := fs.String("username", "", "Broker username")
		password := fs.String("password", "", "Broker password")
		prefix := fs.String("prefix", "", "Topic prefix")
		interval := fs.Int("interval", 60, "Publish interval in seconds")
		fs.Parse(args[1:])
		if *broker == "" {
			return fmt.Errorf("mqtt set: -broker is required")
		}
		return cmd.RunMQTTSet(*configFile, device.MQTTConfig{
			Enabled:         *enabled,
			Broker:          *broker,
			Port:            *port,
			Username:        *username,
			Password:        *password,
			TopicPrefix:     *prefix,
			IntervalSeconds: *interval,
		})

	case "publish":
		fs := flag.NewFlagSet("mqtt publish", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(args[1:])
		if fs.NArg() != 2 {
			return fmt.Errorf("usage: apwire mqtt publish [-config file] <topic> <payload>")
		}
		return cmd.RunMQTTPublish(*configFile, fs.Arg(0), fs.Arg(1))

	default:
		return fmt.Errorf("unknown mqtt subcommand: %s", args[0])
	}
}

func runGPIO(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: apwire gpio <get|set|trigger> [flags]")
	}
	switch args[0] {
	case "get":
		fs := flag.NewFlagSet("gpio get", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(args[1:])
		return cmd.RunGPIOGet(*configFile)

	case "set":
		fs := flag.NewFlagSet("gpio set", flag.ExitOnError)
		configFile := configFlag(fs)
		pin := fs.Int("pin", -1, "Pin number")
		mode := fs.String("mode", "output", "Pin mode (input, output)")
		value := fs.Int("value", 0, "Pin value (0 or 1)")
		label := fs.String("label", "", "Pin label")
		fs.Parse(args[1:])
		if *pin < 0 {
			return fmt.Errorf("gpio set: -pin is required")
		}
		return cmd.RunGPIOSet(*configFile, device.GPIOPin{
			Pin:   *pin,
			Mode:  *mode,
			Value: *value,
			Label: *label,
		})

	case "trigger":
		fs := flag.NewFlagSet("gpio trigger", flag.ExitOnError)
		configFile := configFlag(fs)
		pin := fs.Int("pin", -1, "Pin number")
		fs.Parse(args[1:])
		if *pin < 0 {
			return fmt.Errorf("gpio trigger: -pin is required")
		}
		return cmd.RunGPIOTrigger(*configFile, *pin)

	default:
		return fmt.Errorf("unknown gpio subcommand: %s", args[0])
	}
}

func runNet(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: apwire net <get|set> [flags]")
	}
	switch args[0] {
	case "get":
		fs := flag.NewFlagSet("net get", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(args[1:])
		return cmd.RunNetworkGet(*configFile)

	case "set":
		fs := flag.NewFlagSet("net set", flag.ExitOnError)
		configFile := configFlag(fs)
		ssid := fs.String("ssid", "", "Target network SSID")
		password := fs.String("password", "", "Target network password")
		dhcp := fs.Bool("dhcp", true, "Use DHCP")
		ip := fs.String("ip", "", "Static IP (with -dhcp=false)")
		gateway := fs.String("gateway", "", "Static gateway")
		subnet := fs.String("subnet", "", "Static subnet mask")
		dns := fs.String("dns", "", "Static DNS server")
		fs.Parse(args[1:])
		if *ssid == "" {
			return fmt.Errorf("net set: -ssid is required")
		}
		return cmd.RunNetworkSet(*configFile, device.NetworkSettings{
			SSID:     *ssid,
			Password: *password,
			DHCP:     *dhcp,
			StaticIP: *ip,
			Gateway:  *gateway,
			Subnet:   *subnet,
			DNS:      *dns,
		})

	default:
		return fmt.Errorf("unknown net subcommand: %s", args[0])
	}
}

func runSensors(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: apwire sensors <list|save|publish|toggle|publish-all> [flags]")
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("sensors list", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(args[1:])
		return cmd.RunSensorsList(*configFile)

	case "save":
		fs := flag.NewFlagSet("sensors save", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(args[1:])
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: apwire sensors save [-config file] <sensors.json>")
		}
		return cmd.RunSensorsSave(*configFile, fs.Arg(0))

	case "publish":
		fs := flag.NewFlagSet("sensors publish", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(args[1:])
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: apwire sensors publish [-config file] <sensor-id>")
		}
		return cmd.RunSensorPublish(*configFile, fs.Arg(0))

	case "toggle":
		fs := flag.NewFlagSet("sensors toggle", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(args[1:])
		if fs.NArg() != 1 {
			return fmt.Errorf("usage: apwire sensors toggle [-config file] <sensor-id>")
		}
		return cmd.RunSensorToggle(*configFile, fs.Arg(0))

	case "publish-all":
		fs := flag.NewFlagSet("sensors publish-all", flag.ExitOnError)
		configFile := configFlag(fs)
		fs.Parse(args[1:])
		return cmd.RunSensorsPublishAll(*configFile)

	default:
		return fmt.Errorf("unknown sensors subcommand: %s", args[0])
	}
}

func parsePorts(s string) ([]int, error) {
	var ports []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil || p < 1 || p > 65535 {
			return nil, fmt.Errorf("invalid port %q", part)
		}
		ports = append(ports, p)
	}
	if len(ports) == 0 {
		return nil, fmt.Errorf("no ports given")
	}
	return ports, nil
}

func printUsage() {
	fmt.Println(`apwire - control an ESP-style sensor device over its WiFi access point

Usage: apwire <command> [flags]

Connection:
  connect                 Join the device AP and log in
  status                  Print the device system status
  diag                    Connectivity diagnostics (link, ports, ping, DNS)
  scan [-host] [-ports]   Probe TCP ports through the bound interface

Device:
  sensor                  Read the primary sensor
  sensors <sub>           list | save <file> | publish <id> | toggle <id> | publish-all
  mqtt <sub>              get | set | publish <topic> <payload>
  gpio <sub>              get | set | trigger
  net <sub>               get | set
  passwd <new>            Change the device admin password
  restart                 Reboot the device
  factory-reset [-yes]    Wipe the device configuration

Common flags:
  -config, -c <file>      Configuration file (default ` + defaultConfig + `)`)
}

package wmbuspipe

// Version is the current version of wmbuspipe
const Version = "1.0.0"

// VersionInfo contains detailed version information
type VersionInfo struct {
	// Version is the semantic version
	Version string
	// Producer is the producer program the defaults target
	Producer string
	// Consumer is the consumer program the defaults target
	Consumer string
}

// GetVersion returns the current version information
func GetVersion() VersionInfo {
	return VersionInfo{
		Version:  Version,
		Producer: DefaultProducerPath,
		Consumer: DefaultConsumerPath,
	}
}

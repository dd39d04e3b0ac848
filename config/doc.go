// Package config loads tunnel edge settings from a YAML file merged with
// TUNCORE_ environment overrides.
//
// Example file:
//
//	schema_version: v1
//	transform: chacha20
//	compression: lz4
//	key: correct horse battery staple
//	strategy: rtt
//	round_interval: 5s
//	supernodes:
//	  - address: sn1.example.net:7654
//	    mac: 02:42:ac:11:00:02
package config

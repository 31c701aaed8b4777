package scenario

// Translation of a parameter set into the alias and argument strings
// handed to the server and client binaries of the ping-pong benchmark.

import (
	"fmt"
	"net"
	"strconv"
)

const (
	// TEST_NAME is the fixed category every scenario is reported under
	TEST_NAME = "tcp-ping-pong"

	// PORT is the port the server binds to. Every scenario shares it,
	// so scenarios must never run concurrently.
	PORT = 12345

	SERVER_FLAG = "--server"
	CLIENT_FLAG = "--client"
)

// ParameterSet is one configured sweep point.
type ParameterSet struct {
	// Label is the opaque key the set was configured under
	Label string `json:"label"   yaml:"label"   mapstructure:"label"`
	// NRounds is the number of ping-pong exchanges
	NRounds int `json:"nrounds" yaml:"nrounds" mapstructure:"nrounds"`
	// BufSize is the payload size in bytes
	BufSize int `json:"bufsize" yaml:"bufsize" mapstructure:"bufsize"`
}

// Config is everything derived from a ParameterSet for a single run.
type Config struct {
	Alias      string
	ServerArgs string
	ClientArgs string
}

func (p ParameterSet) String() string {
	return fmt.Sprintf("%s(nrounds=%d, bufsize=%d)", p.Label, p.NRounds, p.BufSize)
}

// Alias returns the human-readable identifier of the scenario.
// It only depends on the round count, so two sets with equal NRounds
// share an alias.
func Alias(p ParameterSet) string {
	return TEST_NAME + "-" + strconv.Itoa(p.NRounds)
}

// ServerArgs returns the argument string for the server binary.
func ServerArgs(p ParameterSet, serverIP string) string {
	return args(SERVER_FLAG, p, serverIP)
}

// ClientArgs returns the argument string for the client binary.
// The client dials the server's own address: both run behind the same IP.
func ClientArgs(p ParameterSet, serverIP string) string {
	return args(CLIENT_FLAG, p, serverIP)
}

// Build derives the full scenario config for a parameter set.
func Build(p ParameterSet, serverIP string) Config {
	return Config{
		Alias:      Alias(p),
		ServerArgs: ServerArgs(p, serverIP),
		ClientArgs: ClientArgs(p, serverIP),
	}
}

// Endpoint returns the host:port both roles use.
func Endpoint(serverIP string) string {
	return net.JoinHostPort(serverIP, strconv.Itoa(PORT))
}

func args(mode string, p ParameterSet, serverIP string) string {
	return fmt.Sprintf("%s %s %d %d", mode, Endpoint(serverIP), p.NRounds, p.BufSize)
}

package tcp

import "github.com/truckfleet/odometer/pkg/network"

// ConnectionCaller is the event caller for events with a *network.ManagedConnection parameter.
func ConnectionCaller(handler interface{}, params ...interface{}) {
	handler.(func(conn *network.ManagedConnection))(params[0].(*network.ManagedConnection))
}

// AddressCaller is the event caller for events with a listen address parameter.
func AddressCaller(handler interface{}, params ...interface{}) {
	handler.(func(addr string))(params[0].(string))
}

package oscvar

import osc "github.com/hypebeast/go-osc"

// Sender is the narrow slice of *osc.Client this package depends on,
// so engine tests can substitute a fake without opening a real UDP
// socket.
type Sender interface {
	Send(packet osc.Packet) error
}

// BuildMessage constructs an *osc.Message from an address and a
// decoded argument list, isolating the go-osc append-API surface to
// this one function.
func BuildMessage(addr string, args []interface{}) *osc.Message {
	msg := osc.NewMessage(addr)
	for _, a := range args {
		msg.Append(a)
	}
	return msg
}

// ArgsFromMessage extracts the argument list from an incoming
// *osc.Message, isolating the go-osc read-API surface to this one
// function.
func ArgsFromMessage(msg *osc.Message) []interface{} {
	return msg.Arguments
}

// SendTo builds and sends one OSC message via sender, logging nothing
// itself — callers decide how to handle a send error per §4.12
// (logged and ignored).
func SendTo(sender Sender, addr string, args []interface{}) error {
	return sender.Send(BuildMessage(addr, args))
}

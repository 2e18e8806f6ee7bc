package main

import (
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// statusTopic carries the retained online/offline marker of a charge point.
func statusTopic(prefix, id string) string { return fmt.Sprintf("%s/%s/status", prefix, id) }

// newMQTTClient connects a simulated charge point. The broker publishes
// "offline" on its status topic if the connection drops.
func newMQTTClient(broker, prefix, id string) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("sim-"+id).
		SetKeepAlive(30*time.Second).
		SetConnectTimeout(5*time.Second).
		SetWill(statusTopic(prefix, id), "offline", 1, true)
	opts.AutoReconnect = true
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Printf("[%s] connection lost: %v", id, err)
	}
	cli := paho.NewClient(opts)
	if tok := cli.Connect(); !tok.WaitTimeout(10*time.Second) || tok.Error() != nil {
		if tok.Error() != nil {
			return nil, tok.Error()
		}
		return nil, fmt.Errorf("connect %s: timeout", broker)
	}
	cli.Publish(statusTopic(prefix, id), 1, true, "online").WaitTimeout(2 * time.Second)
	return cli, nil
}

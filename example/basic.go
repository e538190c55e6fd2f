package main

import (
	"context"
	"log"
	"net/http"

	"meow.tf/websub/subscriber"
	"meow.tf/websub/subscriber/model"
)

func main() {
	c := subscriber.New("https://YOUR_PUBLIC_URL",
		subscriber.WithContentDiscovery(true),
		subscriber.WithContentHandler(subscriber.ContentHandlerFunc(onContent)),
		subscriber.WithVerifiedFunc(func(ev subscriber.Verified) {
			log.Println("Verified:", ev.Mode, ev.Subscription.Topic)
		}),
	)

	// Listen on port 8080 for hub callbacks
	go http.ListenAndServe(":8080", c)

	// When you use SubscribeOptions, you can either:
	// Generate a callback yourself
	// OR let the client generate one (using the sha256 sum of the topic)
	res, err := c.Subscribe(context.Background(), subscriber.SubscribeOptions{
		Topic:  "https://websub.rocks/blog/301",
		Secret: "testing123",
	})

	if err != nil {
		log.Fatalln(err)
	}

	log.Println("Subscription sent! Pending:", res.Pending)

	<-make(chan struct{})
}

func onContent(req *model.IncomingRequest, sub model.Subscription) (*model.Acknowledgement, error) {
	log.Printf("Received %d bytes for %s (%s)", len(req.Body), sub.Topic, req.ContentType)
	return nil, nil
}

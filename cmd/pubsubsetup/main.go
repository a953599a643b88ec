package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/pubsub"
)

// pubsubsetup provisions the mail topic and its subscriptions against a pubsub
// emulator or project. Usage:
//
//	pubsubsetup "PROJECTID,TOPIC1:SUB11:SUB12,TOPIC2:SUB21"
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Please provide the comma-separated topology as a command-line argument, following the pattern: PROJECTID,TOPIC1:SUBSCRIPTION11:SUBSCRIPTION12,TOPIC2:SUBSCRIPTION21")
		return
	}

	items := strings.Split(os.Args[1], ",")
	projectID := strings.ReplaceAll(items[0], " ", "")
	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		log.Panicf("Unable to create client to project %q: %s", projectID, err)
	}
	defer client.Close()
	fmt.Println("Project ID:", projectID)
	items = items[1:]

	for _, item := range items {
		parts := strings.Split(item, ":")
		topicID := strings.ReplaceAll(parts[0], " ", "")
		topic, err := client.CreateTopic(ctx, topicID)
		if err != nil && !strings.Contains(err.Error(), "Topic already exists") {
			log.Panicf("Unable to create topic %s for project %s: %v", topicID, projectID, err)
		} else if err != nil && strings.Contains(err.Error(), "Topic already exists") {
			topic = client.Topic(topicID)
		}

		for _, s := range parts[1:] {
			subscriptionID := strings.ReplaceAll(s, " ", "")

			_, err = client.CreateSubscription(ctx, subscriptionID, pubsub.SubscriptionConfig{Topic: topic})
			if err != nil && !strings.Contains(err.Error(), "Subscription already exists") {
				log.Panicf("Unable to create subscription %s on topic %s for project %s: %v", subscriptionID, topicID, projectID, err)
			}
			fmt.Printf("Project, topic, subscription: [%s, %s, %s]\n", projectID, topicID, subscriptionID)
		}
	}
}

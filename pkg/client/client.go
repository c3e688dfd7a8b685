package client

import (
	"context"
	"time"

	"venuebook/pkg/logger"
)

// Client bundles the outbound dependencies a service talks to.
type Client struct {
	Mongo   *MongoClient
	RefData *RefDataClient
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	c.Mongo = NewMongoClient(log, mongoURI, mongoConnTimeout)
}

func (c *Client) SetRefData(baseURL string) {
	c.RefData = NewRefDataClient(baseURL)
}

func (c *Client) GracefulShutdown() {
	if c.Mongo != nil && c.Mongo.Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = c.Mongo.Client.Disconnect(ctx)
	}
}

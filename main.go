package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwaldt/driftwood/db"
	"github.com/mwaldt/driftwood/federation"
	"github.com/mwaldt/driftwood/util"
	"github.com/mwaldt/driftwood/web"
)

func main() {

	log.Printf("Starting %s", util.GetNameAndVersion())

	conf, err := util.ReadConf()
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Println("Configuration: ")
	fmt.Println(util.PrettyPrint(conf))

	log.Println("Running database migrations...")
	database := db.GetDB()
	log.Println("Database migrations complete")

	resolver := &federation.Resolver{
		Authors:  database,
		Entries:  database,
		Likes:    database,
		Comments: database,
		Nodes:    database,
	}
	maintainer := &federation.FriendshipMaintainer{
		Follows:     database,
		Friendships: database,
	}
	dispatcher := &federation.Dispatcher{
		Resolver:   resolver,
		Follows:    database,
		Likes:      database,
		Comments:   database,
		Inbox:      database,
		Friendship: maintainer,
	}
	visibility := &federation.Visibility{
		Follows:     database,
		Friendships: database,
		Entries:     database,
	}

	pushTimeout := time.Duration(conf.Conf.PushTimeoutSecs) * time.Second
	publisher := federation.NewPublisher(database, database, database, pushTimeout, conf.Conf.PublishWorkers)
	publisher.Start()

	follows := &federation.FollowService{
		Authors:    database,
		Follows:    database,
		Friendship: maintainer,
		Publisher:  publisher,
	}
	content := &federation.ContentService{
		SiteURL:   conf.Conf.SiteURL,
		Authors:   database,
		Entries:   database,
		Likes:     database,
		Comments:  database,
		Resolver:  resolver,
		Publisher: publisher,
	}
	nodes := &federation.NodeService{
		Nodes:    database,
		Resolver: resolver,
		Client:   &http.Client{Timeout: pushTimeout},
	}

	srv := &web.Server{
		Conf:       conf,
		DB:         database,
		Dispatcher: dispatcher,
		Visibility: visibility,
		Follows:    follows,
		Content:    content,
		Nodes:      nodes,
	}

	startServing(srv, publisher, conf)
}

func startServing(srv *web.Server, publisher *federation.Publisher, conf *util.AppConfig) {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", conf.Conf.HttpPort),
		Handler: srv.Router(),
	}

	log.Printf("Starting API server on %s:%d", conf.Conf.Host, conf.Conf.HttpPort)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalln(err)
		}
	}()

	<-done
	log.Println("Stopping API server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer func() { cancel() }()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalln(err)
	}
	publisher.Stop()
}

package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"time"
)

// waitfor blocks until a TCP endpoint accepts connections, for use in compose and CI
// startup ordering.
func main() {
	host := flag.String("host", "localhost", "the host to connect to")
	port := flag.String("port", "5432", "the port to connect to")
	timeout := 10 * time.Second

	flag.Parse()

	for i := 1; i < 20; i++ {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(*host, *port), timeout)
		if err == nil {
			conn.Close()
			fmt.Printf("TCP connection available on [%s:%s]\n", *host, *port)
			return
		}

		fmt.Printf("connection not yet available on [%s:%s]: %v\n", *host, *port, err)
		time.Sleep(1 * time.Second)
	}
	log.Panicf("could not open TCP connection on [%s,%s] after max attempts.", *host, *port)
}

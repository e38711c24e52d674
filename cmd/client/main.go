// Command client authenticates against a vcalc server and prints the sum of
// every vector it sends.
//
// Vectors are given after "--" as comma-separated lists, or read from stdin
// one per line when no operands are present:
//
//	client -a 127.0.0.1:33333 -u alice -- 1,2,3 4.5,-1
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"

	"github.com/dmitrijs2005/vcalc/internal/client/client"
	"github.com/dmitrijs2005/vcalc/internal/client/config"
	"github.com/dmitrijs2005/vcalc/internal/client/input"
)

// envSecret, when set, supplies the secret without a prompt.
const envSecret = "VCALC_SECRET"

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], bufio.NewReader(os.Stdin), os.Stdout, os.Stderr); err != nil {
		stop()
		log.Fatalf("%v", err)
	}

}

func run(ctx context.Context, cfg *config.Config, args []string, in *bufio.Reader, out, prompts io.Writer) error {
	vectors, err := operands(args)
	if err != nil {
		return err
	}

	login := cfg.Login
	if login == "" {
		if login, err = input.GetSimpleText(in, "Login", prompts); err != nil {
			return fmt.Errorf("read login: %w", err)
		}
	}
	secret, ok := os.LookupEnv(envSecret)
	if !ok {
		if secret, err = input.GetSecret(in, "Secret", prompts); err != nil {
			return fmt.Errorf("read secret: %w", err)
		}
	}
	if vectors == nil {
		fmt.Fprintln(prompts, "Enter vectors, one per line ('.' to finish):")
		if vectors, err = input.GetVectors(in); err != nil {
			return err
		}
	}

	c, err := client.Dial(ctx, cfg.ServerEndpointAddr, client.Options{Timeout: cfg.Timeout})
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Authenticate(ctx, login, secret); err != nil {
		return err
	}
	sums, err := c.Process(ctx, vectors)
	for i, sum := range sums {
		fmt.Fprintf(out, "%d: %v\n", i, sum)
	}
	if err != nil {
		return err
	}
	return c.Finish(ctx)
}

// operands parses the vectors after "--". It returns nil when there is no
// "--", and an empty slice when nothing follows it.
func operands(args []string) ([][]float64, error) {
	i := slices.Index(args, "--")
	if i < 0 {
		return nil, nil
	}
	vectors := make([][]float64, 0, len(args)-i-1)
	for _, arg := range args[i+1:] {
		v, err := input.ParseVector(arg)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

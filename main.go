package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/chemvis/internal/app"
)

func main() {
	application := app.New()
	<-application.Start()

	// uploads in flight get this long to finish
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	application.Stop(ctx)
}

package main

import (
	"canteen-backend/cmd/canteen/commands"
	"canteen-backend/internal/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}

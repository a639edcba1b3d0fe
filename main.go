package main

import "github.com/supabase/pg-toolbelt-sub009/cmd"

func main() {
	cmd.Execute()
}

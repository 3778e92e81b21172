package main

import "github.com/fstjohn-aops/ec2-instance-controls/cmd"

func main() {
	cmd.Execute()
}

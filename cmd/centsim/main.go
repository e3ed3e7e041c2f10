// Command centsim emulates the Hawk disk controller and the MUX serial
// card of a Centurion minicomputer at the register level.
package main

func main() {
	Execute()
}

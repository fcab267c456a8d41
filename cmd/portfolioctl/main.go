// Command portfolioctl runs operator tasks against the portfolio store:
// schema migrations, role grants and a look at the moderation queue.
package main

func main() {
	Execute()
}

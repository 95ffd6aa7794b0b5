// Command geminichat chats with Google Gemini from the terminal or a browser.
package main

import "github.com/diogo/geminichat/internal/commands"

func main() {
	commands.Execute()
}

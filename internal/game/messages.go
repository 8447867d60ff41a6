package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/action"
	"github.com/jwebster45206/quest-engine/pkg/render"
)

const (
	msgWelcomeNew     = "Welcome, traveller! You don't have a character yet."
	msgAskName        = "What is your character's name? Use letters and digits only."
	msgInvalidName    = "That name won't do. Use letters and digits only, no spaces."
	msgNameNotAllowed = "That name isn't allowed. Please pick another."
	msgAlreadyCreated = "You already have a character."
	msgHelp           = "Send /start to begin or pick an option from the menu."
	msgNoCharacter    = "You don't have a character yet. Create one to start playing."
	msgStale          = "This screen is out of date. Here is the main menu."
	msgUnknownAction  = "I didn't understand that choice."
	msgFailure        = "Something went wrong. Please try again."
	msgMainMenu       = "What would you like to do?"
	msgDied           = "You have fallen in battle. You wake up at %s, wounds healed, your pack still on your back."
	msgEmptyInventory = "Your inventory is empty."
	msgNothingToUse   = "You have nothing you can use."
	msgNobodyHere     = "There is nobody here to talk to."
	msgNoEnemies      = "There are no enemies here."
	msgNoQuests       = "You have no active quests."
	msgUnreachable    = "You can't get there from here."
	msgDialogMoved    = "That conversation has moved on."
)

func welcome(name string) string {
	return fmt.Sprintf("Welcome back, %s!", name)
}

func created(name string) string {
	return fmt.Sprintf("Welcome to the world, %s!", name)
}

var mainMenuButtons = []render.Button{
	{Label: "Location", Action: action.Token(action.GetLocation)},
	{Label: "Stats", Action: action.Token(action.GetStats)},
	{Label: "Inventory", Action: action.Token(action.GetInventory)},
	{Label: "Use item", Action: action.Token(action.GetUsableItems)},
	{Label: "Travel", Action: action.Token(action.ChangeLocation)},
	{Label: "People", Action: action.Token(action.GetNPCs)},
	{Label: "Enemies", Action: action.Token(action.GetEnemies)},
	{Label: "Quests", Action: action.Token(action.GetQuests)},
}

func backButton() render.Button {
	return render.Button{Label: "Back", Action: action.Token(action.MainMenu)}
}

func createButton() render.Button {
	return render.Button{Label: "Create character", Action: action.Token(action.CreateCharacter)}
}

func mainMenu(text string) *render.Payload {
	return &render.Payload{
		Text:    render.Lines(text, msgMainMenu),
		Buttons: slices.Clone(mainMenuButtons),
		Columns: 2,
	}
}

func screen(text string, buttons ...render.Button) *render.Payload {
	return &render.Payload{Text: text, Buttons: buttons}
}

func bullet(items []string) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(it)
	}
	return b.String()
}

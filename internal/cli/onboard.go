package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/waylis/waycli/internal/config"
)

// --- onboard selection model ---

type onboardChoice int

const (
	choiceKeep onboardChoice = iota
	choiceOverwrite
)

type onboardModel struct {
	choices []string
	cursor  int
	chosen  bool
	choice  onboardChoice
}

func (m onboardModel) Init() tea.Cmd { return nil }

func (m onboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.choice = choiceKeep
			m.chosen = true
			return m, tea.Quit
		case tea.KeyUp, tea.KeyShiftTab:
			if m.cursor > 0 {
				m.cursor--
			}
		case tea.KeyDown, tea.KeyTab:
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case tea.KeyEnter:
			m.choice = onboardChoice(m.cursor)
			m.chosen = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m onboardModel) View() string {
	if m.chosen {
		return ""
	}

	s := "\n"
	s += fmt.Sprintf("  Config already exists at %s\n\n", DimStyle.Render(config.ConfigPath()))

	for i, choice := range m.choices {
		cursor := "  "
		if i == m.cursor {
			cursor = SystemLabel.Render("❯ ")
		}
		s += "  " + cursor + choice + "\n"
	}

	s += "\n" + DimStyle.Render("  ↑/↓ navigate · enter select · esc cancel") + "\n"
	return s
}

// RunOnboard initializes the data directory and writes a default
// config.yaml, asking before touching an existing one.
func RunOnboard() {
	cfgPath := config.ConfigPath()

	fmt.Println()
	fmt.Println(TitleStyle.Render(fmt.Sprintf("  %s waycli Onboard", Logo)))

	if _, err := os.Stat(cfgPath); err == nil {
		m := onboardModel{
			choices: []string{
				"Keep — leave the existing config untouched",
				"Overwrite — replace with fresh defaults",
			},
		}
		p := tea.NewProgram(m)
		final, err := p.Run()
		if err != nil {
			fmt.Println("  " + ErrStyle.Render("Error: "+err.Error()))
			os.Exit(1)
		}
		fm := final.(onboardModel)

		fmt.Println()
		if fm.choice != choiceOverwrite {
			fmt.Println("  " + DimStyle.Render("Config unchanged"))
			fmt.Println()
			return
		}
	}

	if err := config.Save(config.DefaultConfig()); err != nil {
		fmt.Println("  " + ErrStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
	fmt.Println()
	fmt.Println("  " + OkStyle.Render("✓") + " Config at " + DimStyle.Render(cfgPath))
	fmt.Println("  " + OkStyle.Render("✓") + " Data dir at " + DimStyle.Render(config.DataDir()))

	fmt.Println()
	fmt.Println(OkStyle.Render("  waycli is ready!"))
	fmt.Println()
	fmt.Println(DimStyle.Render("  Next steps:"))
	fmt.Println(DimStyle.Render("  1. Point serverUrl in " + cfgPath + " at your Waylis server"))
	fmt.Println(DimStyle.Render("  2. Optionally export WAYLIS_TOKEN with your identity token"))
	fmt.Println(DimStyle.Render("  3. Start chatting: waycli chat"))
	fmt.Println()
}

package app

import "charm.land/lipgloss/v2"

var (
	headerStyle              = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle                = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle              = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusErrorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	tabStyle                 = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Bold(true)
	tabActiveStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("239")).Bold(true).Underline(true)
	selectedStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	checkedStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
	placeholderStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	emptyStyle               = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	dividerStyle             = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	menuDropStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("235"))
	dialogHeaderStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("251")).Background(lipgloss.Color("235")).Bold(true)
	confirmDialogBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208"))
	clearButtonStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("180")).Bold(true).Underline(true)
	deleteButtonStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true).Underline(true)
	copyButtonStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Bold(true).Underline(true)
	toastInfoStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Bold(true)
	toastWarningStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("136")).Bold(true)
	toastErrorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true)
)

package pets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitpet/internal/cli"
	"github.com/julianstephens/habitpet/internal/engine"
	apperrors "github.com/julianstephens/habitpet/internal/errors"
	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/internal/pet"
	"github.com/julianstephens/habitpet/internal/validation"
)

var errNoPet = apperrors.WithHint(errors.New("no pet yet"), "hatch one with 'habitpet pet hatch <name>'")

type PetCmd struct {
	Status  PetStatusCmd  `cmd:"" help:"Show the pet." default:"1"`
	Hatch   PetHatchCmd   `cmd:"" help:"Hatch a new pet, replacing any existing one."`
	Rename  PetRenameCmd  `cmd:"" help:"Rename the pet."`
	Shop    PetShopCmd    `cmd:"" help:"List hats and prices."`
	Buy     PetBuyCmd     `cmd:"" help:"Buy a hat with XP."`
	Equip   PetEquipCmd   `cmd:"" help:"Wear an owned hat, or 'none' to take it off."`
	Refresh PetRefreshCmd `cmd:"" help:"Apply elapsed decay and update the pet's mood."`
}

func requirePet(st *engine.Store) (*models.Pet, error) {
	p := st.Pet()
	if p == nil {
		return nil, errNoPet
	}
	return p, nil
}

type PetStatusCmd struct {
	Plain bool `help:"Disable colors and borders."`
}

func (c *PetStatusCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Engine()
	if err != nil {
		return err
	}
	st.RefreshPet()
	p, err := requirePet(st)
	if err != nil {
		return err
	}
	ctx.Printf("%s", RenderCard(*p, !c.Plain && isTerminal(ctx.Out)))
	return nil
}

type PetHatchCmd struct {
	Name  string `arg:"" help:"Pet name."`
	Color string `help:"Pet color." default:"green"`
	Force bool   `help:"Replace an existing pet without asking."`
}

func (c *PetHatchCmd) Run(ctx *cli.Context) error {
	if err := validation.PetName(c.Name); err != nil {
		return err
	}
	st, err := ctx.Engine()
	if err != nil {
		return err
	}

	if existing := st.Pet(); existing != nil && !c.Force {
		ok, err := ctx.Confirm(fmt.Sprintf("Replace %s (level %d)? Its XP and items will be lost.", existing.Name, existing.Level))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Hatch cancelled.")
			return nil
		}
	}

	p := st.ResetPet(strings.TrimSpace(c.Name), c.Color)
	ctx.Printf("🥚 %s hatched! %s\n", p.Name, Face(p.Mood))
	return nil
}

type PetRenameCmd struct {
	Name string `arg:"" help:"New pet name."`
}

func (c *PetRenameCmd) Run(ctx *cli.Context) error {
	if err := validation.PetName(c.Name); err != nil {
		return err
	}
	st, err := ctx.Engine()
	if err != nil {
		return err
	}
	name := strings.TrimSpace(c.Name)
	if !st.UpdatePet(engine.PetPatch{Name: &name}) {
		return errNoPet
	}
	ctx.Printf("Your pet is now called %s\n", name)
	return nil
}

type PetShopCmd struct{}

func (c *PetShopCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Engine()
	if err != nil {
		return err
	}
	p, err := requirePet(st)
	if err != nil {
		return err
	}

	ctx.Printf("Hat shop (%d XP to spend, level %d):\n\n", p.XP, p.Level)
	for _, item := range pet.Catalog {
		var status string
		switch {
		case p.Owns(item.ID):
			status = "owned"
		case item.UnlockLevel > p.Level:
			status = fmt.Sprintf("unlocks at level %d", item.UnlockLevel)
		case item.Price == 0:
			status = "free"
		default:
			status = fmt.Sprintf("%d XP", item.Price)
		}
		ctx.Printf("  %-8s %-14s %s\n", item.ID, item.Name, status)
	}
	return nil
}

type PetBuyCmd struct {
	Item string `arg:"" help:"Item id from 'habitpet pet shop'."`
}

func (c *PetBuyCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Engine()
	if err != nil {
		return err
	}
	p, err := requirePet(st)
	if err != nil {
		return err
	}

	item, ok := pet.Lookup(strings.ToLower(strings.TrimSpace(c.Item)))
	if !ok {
		return fmt.Errorf("unknown item %q", c.Item)
	}
	switch {
	case p.Owns(item.ID):
		return fmt.Errorf("%s already owns the %s", p.Name, item.Name)
	case item.UnlockLevel > p.Level:
		return fmt.Errorf("the %s unlocks at level %d", item.Name, item.UnlockLevel)
	case item.Price == 0:
		return fmt.Errorf("the %s is granted automatically at level %d", item.Name, item.UnlockLevel)
	}

	if !st.BuyItem(item.ID, item.Price) {
		return fmt.Errorf("not enough XP: the %s costs %d, you have %d", item.Name, item.Price, p.XP)
	}
	ctx.Printf("Bought the %s for %d XP\n", item.Name, item.Price)
	return nil
}

type PetEquipCmd struct {
	Item string `arg:"" help:"Owned item id, or 'none'."`
}

func (c *PetEquipCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Engine()
	if err != nil {
		return err
	}
	if _, err := requirePet(st); err != nil {
		return err
	}

	id := strings.ToLower(strings.TrimSpace(c.Item))
	if id == "none" {
		id = ""
	}
	if !st.EquipHat(id) {
		return fmt.Errorf("you don't own %q", c.Item)
	}
	if id == "" {
		ctx.Println("Hat removed")
	} else {
		ctx.Printf("Now wearing: %s\n", id)
	}
	return nil
}

type PetRefreshCmd struct{}

func (c *PetRefreshCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Engine()
	if err != nil {
		return err
	}
	if _, err := requirePet(st); err != nil {
		return err
	}

	changed := st.RefreshPet()
	p := st.Pet()
	if changed {
		ctx.Printf("%s is %s with %d health\n", p.Name, p.Mood, p.Health)
	} else {
		ctx.Printf("%s is unchanged (%s, %d health)\n", p.Name, p.Mood, p.Health)
	}
	return nil
}

package services

import "little-realm/server/models"

// AttackResult is the outcome of one swing.
type AttackResult struct {
	Attacker string `json:"-"`
	Target   string `json:"-"`
	Damage   int    `json:"damage"`
	TargetHP int    `json:"target_hp"`
	Slain    bool   `json:"slain"`
}

// Attack resolves one attack from attackerID against targetID and applies the
// damage to the target's base HP. Damage is STR+DMG less the target's PDEF,
// never below 1.
func (s *EntityStore) Attack(attackerID, targetID int64) (AttackResult, error) {
	attacker, err := s.LifeForm(attackerID)
	if err != nil {
		return AttackResult{}, err
	}
	target, err := s.LifeForm(targetID)
	if err != nil {
		return AttackResult{}, err
	}

	str, err := s.TotalStat(attackerID, models.StatSTR)
	if err != nil {
		return AttackResult{}, err
	}
	dmg, err := s.TotalStat(attackerID, models.StatDMG)
	if err != nil {
		return AttackResult{}, err
	}
	pdef, err := s.TotalStat(targetID, models.StatPDEF)
	if err != nil {
		return AttackResult{}, err
	}

	damage := str + dmg - pdef
	if damage < 1 {
		damage = 1
	}

	hp := target.LifeForm.Stats.Get(models.StatHP) - damage
	if hp < 0 {
		hp = 0
	}
	target.LifeForm.Stats[models.StatHP] = hp

	return AttackResult{
		Attacker: attacker.Name,
		Target:   target.Name,
		Damage:   damage,
		TargetHP: hp,
		Slain:    hp == 0,
	}, nil
}

package phase

// DefaultCatalog returns the ACL reconstruction protocol, in order.
// IDs are left empty; the seeding orchestrator assigns them.
func DefaultCatalog() []Definition {
	return []Definition{
		{
			Position:          1,
			Name:              "Fase 1",
			ApproxPeriod:      "1 a 14 dias",
			AllowedActivities: "Mobilização passiva, Exercícios isométricos",
			SpecificTests:     "Avaliação de edema, Avaliação de ADM",
			Treatments:        "Crioterapia,Eletroterapia,Exercícios de mobilização passiva",
			PhysicalPrep:      "Isometria de quadríceps (Progressão),Exercícios de ADM (Progressão)",
			RugbySkills:       "Tackle:1,Passe:1,Scrum:1,Ruck:1,Treino em campo:1",
		},
		{
			Position:          2,
			Name:              "Fase 2",
			ApproxPeriod:      "15 a 28 dias",
			AllowedActivities: "Exercícios em CCA, Bicicleta estacionária",
			SpecificTests:     "Teste de força muscular, Avaliação de marcha",
			Treatments:        "Exercícios ativos,Treino de marcha,Fortalecimento",
			PhysicalPrep:      "Leg Press (Progressão),Agachamento (Restrição),Bicicleta (Completo)",
			RugbySkills:       "Tackle:1,Passe:2,Scrum:1,Ruck:1,Treino em campo:1",
		},
		{
			Position:          3,
			Name:              "Fase 3",
			ApproxPeriod:      "29 a 90 dias",
			AllowedActivities: "Exercícios em CCF, Corrida em linha reta",
			SpecificTests:     "Teste de agilidade, Avaliação funcional",
			Treatments:        "Exercícios pliométricos,Treino de corrida,Core",
			PhysicalPrep:      "Agachamento (Progressão),Corrida (Progressão),Pliometria (Restrição)",
			RugbySkills:       "Tackle:1,Passe:3,Scrum:2,Ruck:2,Treino em campo:2",
		},
		{
			Position:          4,
			Name:              "Fase 4",
			ApproxPeriod:      "91 a 180 dias",
			AllowedActivities: "Exercícios específicos do rugby, Treino com bola",
			SpecificTests:     "Teste de salto, Y-Balance Test",
			Treatments:        "Treino específico,Agilidade,Potência",
			PhysicalPrep:      "Pliometria (Progressão),Agilidade (Progressão),Potência (Progressão)",
			RugbySkills:       "Tackle:2,Passe:3,Scrum:2,Ruck:2,Treino em campo:3",
		},
		{
			Position:          5,
			Name:              "Fase 5",
			ApproxPeriod:      "181 a 240 dias",
			AllowedActivities: "Retorno gradual ao treino com equipe",
			SpecificTests:     "Testes específicos do rugby",
			Treatments:        "Treino com equipe,Contato gradual,Jogo simulado",
			PhysicalPrep:      "Treino completo (Progressão),Contato (Progressão)",
			RugbySkills:       "Tackle:2,Passe:3,Scrum:3,Ruck:3,Treino em campo:3",
		},
		{
			Position:          6,
			Name:              "Alta",
			ApproxPeriod:      "após 240 dias",
			AllowedActivities: "Retorno completo às atividades",
			SpecificTests:     NoTests,
			Treatments:        "Manutenção,Prevenção",
			PhysicalPrep:      "Treino completo (Completo)",
			RugbySkills:       "Tackle:3,Passe:3,Scrum:3,Ruck:3,Treino em campo:3",
		},
	}
}

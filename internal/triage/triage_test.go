package triage

import "testing"

func TestAdmitNavalAIScenario(t *testing.T) {
	f := New(PolicySentence)
	v := f.Admit(
		"AI-powered radar for naval frigates",
		"New machine learning model improves sonar detection range for submarine warfare.",
	)
	if !v.Admit {
		t.Errorf("expected admission, got rejection (%s)", v.Reason)
	}
}

func TestRejectDefenseOnly(t *testing.T) {
	f := New(PolicySentence)
	v := f.Admit(
		"New frigate commissioned by the navy",
		"The vessel will patrol coastal waters.",
	)
	if v.Admit {
		t.Error("expected rejection for item without AI terms")
	}
	if v.Reason != ReasonNoAI {
		t.Errorf("expected reason %q, got %q", ReasonNoAI, v.Reason)
	}
}

func TestRejectAIOnly(t *testing.T) {
	for _, policy := range []Policy{PolicySentence, PolicyText} {
		f := New(policy)
		v := f.Admit(
			"New large language model released",
			"The model improves text generation benchmarks.",
		)
		if v.Admit {
			t.Errorf("policy %s: expected rejection for item without defense terms", policy)
		}
		if v.Reason != ReasonNoCooccur {
			t.Errorf("policy %s: expected reason %q, got %q", policy, ReasonNoCooccur, v.Reason)
		}
	}
}

func TestRejectNoiseWithoutDefenseContext(t *testing.T) {
	f := New(PolicySentence)
	v := f.Admit(
		"Best smartphone deals this week",
		"Save 30% on the latest AI-powered phone.",
	)
	if v.Admit {
		t.Error("expected rejection for consumer noise")
	}
	if v.Reason != ReasonNoise {
		t.Errorf("expected reason %q, got %q", ReasonNoise, v.Reason)
	}
}

func TestNoiseOverriddenByDefenseContext(t *testing.T) {
	f := New(PolicySentence)
	v := f.Admit(
		"Navy signs deal for AI radar",
		"The contract covers machine learning sonar upgrades for the frigate fleet.",
	)
	if !v.Admit {
		t.Errorf("expected defense context to override the noise pattern, got %q", v.Reason)
	}
}

func TestSentencePolicyStricterThanText(t *testing.T) {
	// AI in one sentence, defense in another: text policy admits,
	// sentence policy rejects.
	title := "Weekly technology roundup"
	summary := "A new large language model was announced. Separately, the navy launched a frigate."

	if v := New(PolicyText).Admit(title, summary); !v.Admit {
		t.Errorf("text policy should admit, got %q", v.Reason)
	}
	if v := New(PolicySentence).Admit(title, summary); v.Admit {
		t.Error("sentence policy should reject split co-occurrence")
	}
}

func TestTitleAloneSatisfiesSentencePolicy(t *testing.T) {
	f := New(PolicySentence)
	v := f.Admit("Machine learning sonar for submarines", "")
	if !v.Admit {
		t.Errorf("expected title-scope co-occurrence to admit, got %q", v.Reason)
	}
}

func TestRejectEmptyTitle(t *testing.T) {
	f := New(PolicySentence)
	v := f.Admit("", "machine learning on a frigate.")
	if v.Admit || v.Reason != ReasonMissingField {
		t.Errorf("expected missing_field rejection, got %+v", v)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy(""); err != nil || p != PolicySentence {
		t.Errorf("empty policy: got %q, %v", p, err)
	}
	if p, err := ParsePolicy("text"); err != nil || p != PolicyText {
		t.Errorf("text policy: got %q, %v", p, err)
	}
	if _, err := ParsePolicy("paragraph"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

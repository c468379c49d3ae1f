// Package e2e provides end-to-end tests with a large QA corpus and multiple queries.
package e2e

import (
	"context"
	"fmt"
	"time"

	"github.com/legalbot/jai/internal/embedding"
	"github.com/legalbot/jai/internal/models"
)

// QAPair is one reference question and its stored answer in the E2E corpus.
type QAPair struct {
	Question string
	Answer   string
}

// QueryTestCase defines a question to ask and the answer that must come back.
// Questions are asked verbatim, so the matched record must be the pair whose
// reference question is identical and the score must be at (or very near) 1.0.
type QueryTestCase struct {
	Question       string
	ExpectedAnswer string
	Description    string
}

// Corpus holds QA pairs and query test cases for E2E tests.
type Corpus struct {
	Pairs        []QAPair
	TestCases    []QueryTestCase
	TotalPairs   int
	TotalQueries int
}

// BuildCorpus returns a corpus of 100 QA pairs with varied employment-law
// topics and one query test case per distinct topic. Every reference question
// is unique so exact-match retrieval is unambiguous.
func BuildCorpus() *Corpus {
	pairs := buildPairs(100)
	cases := buildQueryTestCases(pairs)
	return &Corpus{
		Pairs:        pairs,
		TestCases:    cases,
		TotalPairs:   len(pairs),
		TotalQueries: len(cases),
	}
}

func buildPairs(n int) []QAPair {
	topics := []QAPair{
		{"How long is the probation period?", "The standard probation period is 90 days unless the contract states a shorter one."},
		{"What is the notice period for termination?", "Either party may terminate the contract with 30 days written notice."},
		{"How many vacation days am I entitled to per year?", "Employees accrue 24 paid vacation days per year after twelve months of service."},
		{"Is overtime paid on weekends?", "Weekend overtime is paid at double the regular hourly rate."},
		{"What is the maximum number of working hours per week?", "Working time may not exceed 48 hours per week including overtime."},
		{"When is the annual bonus paid?", "The annual bonus is paid together with the December payroll."},
		{"Can my employer change my work location?", "Relocation requires your written consent unless the contract contains a mobility clause."},
		{"How many paid sick days do I get?", "Up to 30 paid sick days per year with a medical certificate from the third day."},
		{"How long is maternity leave?", "Maternity leave is 120 days at full pay, extendable by 60 unpaid days."},
		{"How long is paternity leave?", "Paternity leave is 20 consecutive days starting from the birth."},
		{"How is severance pay calculated?", "Severance equals one month of salary per full year of service, capped at twelve months."},
		{"What is the minimum wage?", "Pay may not fall below the statutory minimum wage published each January."},
		{"How long is the lunch break?", "Shifts longer than six hours include a one-hour unpaid meal break."},
		{"Is there an allowance for night shifts?", "Night work between 22:00 and 05:00 carries a 20 percent wage supplement."},
		{"Do I get paid on public holidays?", "Public holidays are paid in full; working one earns a compensatory day off."},
		{"Can I work from home?", "Remote work up to three days per week requires your manager's written approval."},
		{"How do I claim travel expenses?", "Submit receipts through the expense portal within 30 days of the trip."},
		{"Does the company pay for training courses?", "Job-related training is reimbursed in full when approved in advance."},
		{"How long does the non-compete clause last?", "The non-compete covers twelve months after termination within the same industry."},
		{"What does the confidentiality agreement cover?", "All non-public business information, indefinitely, including after the contract ends."},
		{"Can I request an employment reference?", "A written reference must be issued within ten days of your request."},
		{"When do I receive my payslip?", "Payslips are available in the portal on the last business day of each month."},
		{"What deductions appear on my payslip?", "Income tax, social security, pension contributions, and any court-ordered garnishments."},
		{"Can I join a union?", "Union membership is a protected right and may not affect your employment terms."},
		{"Am I paid during a strike?", "Wages are suspended for the duration of a lawful strike."},
		{"What is the disciplinary procedure?", "A written warning, a hearing with representation, then sanctions proportionate to the conduct."},
		{"How do I file a grievance?", "Submit the grievance form to human resources; a response is due within 15 days."},
		{"Who do I contact about harassment?", "Report to the ethics hotline or human resources; investigations start within 48 hours."},
		{"Who provides safety equipment?", "The employer provides and replaces all required protective equipment at no cost."},
		{"Do I have to wear a uniform?", "Uniforms are mandatory for client-facing roles and are supplied by the company."},
		{"Is travel time between sites paid?", "Travel between work sites during the day counts as paid working time."},
		{"How does on-call duty work?", "On-call weeks rotate and pay a flat supplement plus overtime for actual calls."},
		{"What rights do part-time employees have?", "Part-time staff have the same rights as full-time staff, pro-rated by hours."},
		{"Can a fixed-term contract be renewed?", "A fixed-term contract may be renewed once; a second renewal makes it permanent."},
		{"What rules apply to temporary agency workers?", "Agency workers receive equal pay and conditions after twelve weeks in the role."},
		{"Are internships paid?", "Internships longer than one month are paid at least half the entry-level salary."},
		{"What is the retirement age?", "The reference retirement age is 65, with early retirement possible from 62."},
		{"How much does the company contribute to my pension?", "The employer matches pension contributions up to 6 percent of gross salary."},
		{"When does health insurance coverage start?", "Health coverage starts on the first day of employment, with no waiting period."},
		{"Am I entitled to unemployment benefits if I resign?", "Voluntary resignation generally excludes unemployment benefits except for just cause."},
		{"How long is parental leave?", "Each parent may take up to six months of job-protected parental leave per child."},
		{"How many days of bereavement leave do I get?", "Five paid days for immediate family, two for extended family."},
		{"Is jury duty paid?", "Jury duty is paid in full; notify your manager as soon as the summons arrives."},
		{"Can I take a sabbatical?", "After five years of service you may request up to six months of unpaid sabbatical."},
		{"When are salaries reviewed?", "Salaries are reviewed every April based on performance and market benchmarks."},
		{"How are promotions decided?", "Promotions follow the annual calibration round with written criteria per level."},
		{"Can my salary be reduced?", "A salary reduction requires your express written agreement; unilateral cuts are void."},
		{"Can I be transferred to another department?", "Internal transfers need your agreement unless the role change is minor and temporary."},
		{"What happens during a layoff?", "Layoffs follow social criteria, consultation, and severance per years of service."},
		{"Do laid-off employees have recall rights?", "Laid-off staff get priority for rehire in equivalent roles for one year."},
		{"When do I receive my final paycheck?", "The final paycheck is due within ten days of the termination date."},
		{"Is unused vacation paid out when I leave?", "Accrued untaken vacation is paid out with the final paycheck."},
		{"Will my contract renew automatically?", "Permanent contracts continue until terminated; fixed terms end on the agreed date."},
		{"Can the probation period be extended?", "Probation may be extended once, by written agreement, up to 180 days total."},
		{"Are background checks allowed?", "Background checks are limited to role-relevant facts and require your consent."},
		{"Is drug testing permitted at work?", "Testing is allowed only for safety-critical roles and with prior written policy."},
		{"Can my employer monitor my work computer?", "Monitoring must be proportionate, disclosed in the IT policy, and never covert."},
		{"Can I be fired for social media posts?", "Only posts that breach confidentiality or gravely damage the employer can justify dismissal."},
		{"Am I allowed to have a second job?", "A second job is allowed unless it competes with the employer or breaches rest rules."},
		{"What is garden leave?", "During notice the employer may release you from duties while continuing full pay."},
	}

	out := make([]QAPair, 0, n)
	for i := 0; i < n && i < len(topics); i++ {
		out = append(out, topics[i])
	}
	// If we need more than len(topics), duplicate with numbered question
	// variants so every reference question stays unique.
	for len(out) < n {
		i := len(out)
		t := topics[i%len(topics)]
		out = append(out, QAPair{
			Question: fmt.Sprintf("%s (case %d)", t.Question, i+1),
			Answer:   t.Answer,
		})
	}
	return out
}

func buildQueryTestCases(pairs []QAPair) []QueryTestCase {
	// One case per pair for the first 50 pairs: ask the reference question
	// verbatim and expect its stored answer.
	limit := 50
	if len(pairs) < limit {
		limit = len(pairs)
	}
	cases := make([]QueryTestCase, 0, limit)
	for _, p := range pairs[:limit] {
		cases = append(cases, QueryTestCase{
			Question:       p.Question,
			ExpectedAnswer: p.Answer,
			Description:    fmt.Sprintf("question %q returns its stored answer", p.Question),
		})
	}
	return cases
}

// ToAnswerRecords converts the corpus pairs into stored answer records,
// embedding every reference question with the given embedder.
func (c *Corpus) ToAnswerRecords(ctx context.Context, embedder embedding.Embedder) ([]*models.AnswerRecord, error) {
	questions := make([]string, len(c.Pairs))
	for i, p := range c.Pairs {
		questions[i] = p.Question
	}
	vecs, err := embedder.EmbedBatch(ctx, questions)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]*models.AnswerRecord, len(c.Pairs))
	for i, p := range c.Pairs {
		out[i] = &models.AnswerRecord{
			ID:        fmt.Sprintf("e2e-answer-%03d", i+1),
			Question:  p.Question,
			Answer:    p.Answer,
			Embedding: vecs[i],
			Source:    "e2e-corpus",
			CreatedAt: now,
		}
	}
	return out, nil
}
